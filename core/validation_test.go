package core

import (
	"errors"
	"testing"
)

func TestValidatePoem(t *testing.T) {
	tests := []struct {
		name    string
		poem    *Poem
		wantErr error
	}{
		{
			name: "valid poem",
			poem: &Poem{
				Id:     1,
				Title:  "静夜思",
				Author: "李白",
				Era:    "唐",
				Body:   "床前明月光，疑是地上霜。",
			},
			wantErr: nil,
		},
		{
			name: "valid poem with empty vector",
			poem: &Poem{
				Title:  "春晓",
				Author: "孟浩然",
				Body:   "春眠不觉晓，处处闻啼鸟。",
				Vector: nil,
			},
			wantErr: nil,
		},
		{
			name: "valid poem with ID 0",
			poem: &Poem{
				Id:    0,
				Title: "春晓",
				Body:  "春眠不觉晓",
			},
			wantErr: nil,
		},
		{
			name: "valid poem without author",
			poem: &Poem{
				Title: "古诗",
				Body:  "白日依山尽",
			},
			wantErr: nil,
		},
		{
			name:    "nil poem",
			poem:    nil,
			wantErr: ErrInvalidPoem,
		},
		{
			name: "empty title",
			poem: &Poem{
				Author: "李白",
				Body:   "床前明月光",
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "empty body",
			poem: &Poem{
				Title:  "静夜思",
				Author: "李白",
			},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePoem(tt.poem)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePoem() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidatePoem() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePoem() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidPoem) {
				t.Errorf("ValidatePoem() error = %v, want wrapped %v", err, ErrInvalidPoem)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		message *Message
		wantErr error
	}{
		{
			name: "valid user message",
			message: &Message{
				Id:             1,
				ConversationId: 1,
				Role:           RoleUser,
				Status:         StatusPending,
				Content:        "床前明月光的下一句？",
			},
			wantErr: nil,
		},
		{
			name: "valid assistant message",
			message: &Message{
				Role:    RoleAssistant,
				Status:  StatusDone,
				Content: "疑是地上霜。",
			},
			wantErr: nil,
		},
		{
			name:    "nil message",
			message: nil,
			wantErr: ErrInvalidMessage,
		},
		{
			name: "empty content",
			message: &Message{
				Role:   RoleUser,
				Status: StatusPending,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "unknown role",
			message: &Message{
				Role:    Role("narrator"),
				Status:  StatusPending,
				Content: "hello",
			},
			wantErr: ErrInvalidRole,
		},
		{
			name: "unknown status",
			message: &Message{
				Role:    RoleUser,
				Status:  MessageStatus("queued"),
				Content: "hello",
			},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.message)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMessage() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateMessage() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("ValidateMessage() error = %v, want wrapped %v", err, ErrInvalidMessage)
			}
		})
	}
}

func TestValidateAgent(t *testing.T) {
	tests := []struct {
		name    string
		agent   *Agent
		wantErr error
	}{
		{
			name: "valid rag agent",
			agent: &Agent{
				Name:         "诗词助手",
				SystemPrompt: "你是一位诗词助手。",
				Workflow:     WorkflowRagChat,
			},
			wantErr: nil,
		},
		{
			name: "valid game agent",
			agent: &Agent{
				Name:         "飞花令",
				SystemPrompt: "我们来玩飞花令。",
				Workflow:     WorkflowPoetryGame,
			},
			wantErr: nil,
		},
		{
			name:    "nil agent",
			agent:   nil,
			wantErr: ErrInvalidAgent,
		},
		{
			name: "empty system prompt",
			agent: &Agent{
				Name:     "助手",
				Workflow: WorkflowRagChat,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "unknown workflow",
			agent: &Agent{
				Name:         "助手",
				SystemPrompt: "你好",
				Workflow:     Workflow("translation"),
			},
			wantErr: ErrInvalidWorkflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAgent(tt.agent)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAgent() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateAgent() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAgent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name    string
		user    *User
		wantErr error
	}{
		{
			name: "valid user",
			user: &User{
				Email:        "user@example.com",
				Nickname:     "诗友",
				PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
			},
			wantErr: nil,
		},
		{
			name: "valid user without nickname",
			user: &User{
				Email: "user@example.com",
			},
			wantErr: nil,
		},
		{
			name:    "nil user",
			user:    nil,
			wantErr: ErrInvalidUser,
		},
		{
			name: "empty email",
			user: &User{
				Nickname: "诗友",
			},
			wantErr: ErrEmptyEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUser(tt.user)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateUser() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateUser() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUser() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		wantErr bool
	}{
		{name: "system role", role: RoleSystem, wantErr: false},
		{name: "user role", role: RoleUser, wantErr: false},
		{name: "assistant role", role: RoleAssistant, wantErr: false},
		{name: "empty role", role: Role(""), wantErr: true},
		{name: "unknown role", role: Role("narrator"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRole(tt.role)

			if tt.wantErr && err == nil {
				t.Error("ValidateRole() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateRole() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ValidateRole() error = %v, want %v", err, ErrInvalidRole)
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  MessageStatus
		wantErr bool
	}{
		{name: "pending", status: StatusPending, wantErr: false},
		{name: "done", status: StatusDone, wantErr: false},
		{name: "failed", status: StatusFailed, wantErr: false},
		{name: "empty status", status: MessageStatus(""), wantErr: true},
		{name: "unknown status", status: MessageStatus("queued"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatus(tt.status)

			if tt.wantErr && err == nil {
				t.Error("ValidateStatus() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateStatus() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("ValidateStatus() error = %v, want %v", err, ErrInvalidStatus)
			}
		})
	}
}

func TestValidateWorkflow(t *testing.T) {
	tests := []struct {
		name     string
		workflow Workflow
		wantErr  bool
	}{
		{name: "rag chat", workflow: WorkflowRagChat, wantErr: false},
		{name: "poetry game", workflow: WorkflowPoetryGame, wantErr: false},
		{name: "empty workflow", workflow: Workflow(""), wantErr: true},
		{name: "unknown workflow", workflow: Workflow("translation"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkflow(tt.workflow)

			if tt.wantErr && err == nil {
				t.Error("ValidateWorkflow() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateWorkflow() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidWorkflow) {
				t.Errorf("ValidateWorkflow() error = %v, want %v", err, ErrInvalidWorkflow)
			}
		})
	}
}
