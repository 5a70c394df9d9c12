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


package badger

import "github.com/poiesic/shiyun/storage"

// MemoryRepositories bundles in-memory repositories sharing one backend.
// Intended for tests; call Close when done.
type MemoryRepositories struct {
	Poems         storage.PoemRepository
	Conversations storage.ConversationRepository
	Users         storage.UserRepository
	Agents        storage.AgentRepository

	backend  *Backend
	convRepo *ConversationRepository
	userRepo *UserRepository
	agtRepo  *AgentRepository
}

// NewMemoryRepositories creates in-memory repositories for testing.
// All repositories share one in-memory backend.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	convRepo, err := NewConversationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	userRepo, err := NewUserRepository(backend)
	if err != nil {
		convRepo.Close()
		backend.Close()
		return nil, err
	}

	agtRepo, err := NewAgentRepository(backend)
	if err != nil {
		userRepo.Close()
		convRepo.Close()
		backend.Close()
		return nil, err
	}

	return &MemoryRepositories{
		Poems:         NewPoemRepository(backend),
		Conversations: convRepo,
		Users:         userRepo,
		Agents:        agtRepo,
		backend:       backend,
		convRepo:      convRepo,
		userRepo:      userRepo,
		agtRepo:       agtRepo,
	}, nil
}

// Close releases all sequences and closes the backend.
func (m *MemoryRepositories) Close() error {
	m.convRepo.Close()
	m.userRepo.Close()
	m.agtRepo.Close()
	return m.backend.Close()
}
