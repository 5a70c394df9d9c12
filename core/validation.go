// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidatePoem validates a Poem according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Body must not be empty
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding pipeline runs)
//   - ID (0 is valid before the importer assigns one)
func ValidatePoem(poem *Poem) error {
	if poem == nil {
		return fmt.Errorf("%w: poem is nil", ErrInvalidPoem)
	}

	if poem.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPoem, ErrEmptyTitle)
	}

	if poem.Body == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPoem, ErrEmptyContent)
	}

	return nil
}

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be one of system, user, assistant
//   - Status must be one of pending, done, failed
func ValidateMessage(message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if message.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateRole(message.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if err := ValidateStatus(message.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// ValidateAgent validates an Agent according to domain rules.
func ValidateAgent(agent *Agent) error {
	if agent == nil {
		return fmt.Errorf("%w: agent is nil", ErrInvalidAgent)
	}

	if agent.SystemPrompt == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAgent, ErrEmptyContent)
	}

	if err := ValidateWorkflow(agent.Workflow); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAgent, err)
	}

	return nil
}

// ValidateUser validates a User according to domain rules.
func ValidateUser(user *User) error {
	if user == nil {
		return fmt.Errorf("%w: user is nil", ErrInvalidUser)
	}

	if user.Email == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUser, ErrEmptyEmail)
	}

	return nil
}

// ValidateRole checks that role is a known message role.
func ValidateRole(role Role) error {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

// ValidateStatus checks that status is a known message status.
func ValidateStatus(status MessageStatus) error {
	switch status {
	case StatusPending, StatusDone, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
}

// ValidateWorkflow checks that workflow is a known workflow selector.
func ValidateWorkflow(workflow Workflow) error {
	switch workflow {
	case WorkflowPoetryGame, WorkflowRagChat:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidWorkflow, workflow)
}
