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


package shiyun

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/ai/mock"
	"github.com/poiesic/shiyun/ai/openai"
	"github.com/poiesic/shiyun/chat"
	"github.com/poiesic/shiyun/ingestion"
	"github.com/poiesic/shiyun/retrieval"
	"github.com/poiesic/shiyun/storage"
	"github.com/poiesic/shiyun/storage/badger"
)

// Database is the top-level handle: one BadgerDB backend, the repositories
// on top of it, and the configured AI provider.
type Database struct {
	backend   *badger.Backend
	poemRepo  storage.PoemRepository
	convRepo  storage.ConversationRepository
	userRepo  storage.UserRepository
	agentRepo storage.AgentRepository
	provider  ai.AIProvider
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig overrides the default AI configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory opens the storage backend in memory. Intended for tests.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the database at filePath and wires up the repositories
// and the AI provider selected by the configuration.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create repositories
	poemRepo := badger.NewPoemRepository(backend)

	convRepo, err := badger.NewConversationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	userRepo, err := badger.NewUserRepository(backend)
	if err != nil {
		convRepo.Close()
		backend.Close()
		return nil, err
	}

	agentRepo, err := badger.NewAgentRepository(backend)
	if err != nil {
		userRepo.Close()
		convRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create the AI provider. The provider is named explicitly in the
	// configuration; there is no silent fallback between implementations.
	provider, err := newProvider(options.aiConfig)
	if err != nil {
		agentRepo.Close()
		userRepo.Close()
		convRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		poemRepo:  poemRepo,
		convRepo:  convRepo,
		userRepo:  userRepo,
		agentRepo: agentRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

// newProvider dispatches on the configured provider name.
func newProvider(config *ai.Config) (ai.AIProvider, error) {
	switch config.Provider {
	case ai.ProviderMock:
		return mock.NewMockProvider(), nil
	case ai.ProviderOpenAI:
		return openai.NewProvider(config)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", config.Provider)
	}
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.agentRepo.Close(); err != nil {
		db.logger.Error("error closing agent repository", "err", err)
		return err
	}
	if err := db.userRepo.Close(); err != nil {
		db.logger.Error("error closing user repository", "err", err)
		return err
	}
	if err := db.convRepo.Close(); err != nil {
		db.logger.Error("error closing conversation repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) PoemRepository() storage.PoemRepository {
	return db.poemRepo
}

func (db *Database) ConversationRepository() storage.ConversationRepository {
	return db.convRepo
}

func (db *Database) UserRepository() storage.UserRepository {
	return db.userRepo
}

func (db *Database) AgentRepository() storage.AgentRepository {
	return db.agentRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.poemRepo, db.provider, opts...)
}

func (db *Database) NewOrchestrator(opts ...chat.Option) (*chat.Orchestrator, error) {
	retriever, err := db.NewRetriever()
	if err != nil {
		return nil, err
	}
	return chat.NewOrchestrator(db.convRepo, db.agentRepo, retriever, db.provider, opts...)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.poemRepo, db.provider, opts...)
}
