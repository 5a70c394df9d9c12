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


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/shiyun"
	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/chat"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/ingestion"
	"github.com/poiesic/shiyun/retrieval"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "shiyun",
		Usage: "Conversational assistant over a classical poetry corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import a poetry corpus and generate embeddings",
				Action: importCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Glob pattern of corpus JSON files",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of poems to write and embed per batch",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for embedding",
						Value: 4,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the poetry corpus",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (keyword, vector, hybrid)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   retrieval.DefaultTopK,
					},
				),
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive conversation with an agent",
				Action: chatCommand,
				Flags: append(commonFlags(),
					&cli.Uint64Flag{
						Name:     "agent",
						Aliases:  []string{"a"},
						Usage:    "Agent ID to converse with",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:  "user",
						Usage: "User ID owning the conversation",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode for rag_chat agents (keyword, vector, hybrid)",
						Value: "hybrid",
					},
				),
			},
			{
				Name:   "seed",
				Usage:  "Create a default user and the built-in agents",
				Action: seedCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "email",
						Usage: "Email of the default user",
						Value: "user@example.com",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password of the default user",
						Value: "changeme",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// commonFlags returns the flags shared by all database-backed commands.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "AI provider (openai, mock)",
			Value: ai.ProviderOpenAI,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "nomic-embed-text",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
			Value: "qwen2.5:7b",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key for the AI service",
			Value: "none",
		},
	}
}

// openDatabase builds a Database from the common flags.
func openDatabase(c *cli.Context) (*shiyun.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := shiyun.NewDatabase(c.String("db"), shiyun.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	poems, err := ingestion.LoadCorpusGlob(c.String("corpus"))
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(poems) == 0 {
		return fmt.Errorf("no poems found matching %q", c.String("corpus"))
	}
	fmt.Fprintf(os.Stderr, "Loaded %d poems\n", len(poems))

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithPoolSize(c.Int("pool-size")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	written, err := pipeline.Ingest(ctx, poems)
	if err != nil {
		return fmt.Errorf("import failed after %d poems: %w", written, err)
	}

	fmt.Fprintf(os.Stderr, "Imported %d poems\n", written)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	hits, err := retriever.SearchWithMonitor(ctx, query, retrieval.Mode(c.String("mode")), c.Int("top-k"), &searchTracer{})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, hit := range hits {
		fmt.Printf("%d. 《%s》 %s", i+1, hit.Poem.Title, hit.Poem.Author)
		if hit.Scored {
			fmt.Printf("  (score %.4f)", hit.Score)
		}
		fmt.Printf("\n%s\n\n", hit.Poem.Body)
	}
	return nil
}

// searchTracer logs each retrieval stage at debug level, so
// `--log-level debug` shows where candidates came from.
type searchTracer struct{}

func (t *searchTracer) Start(query string, mode retrieval.Mode) {
	slog.Debug("search started", "query", query, "mode", mode)
}

func (t *searchTracer) AfterKeywordSearch(ids []core.ID) {
	slog.Debug("keyword channel done", "candidates", len(ids))
}

func (t *searchTracer) AfterVectorSearch(matches []core.SimilarityMatch) {
	slog.Debug("vector channel done", "candidates", len(matches))
}

func (t *searchTracer) VectorSearchDegraded(err error) {
	slog.Debug("vector channel degraded", "err", err)
}

func (t *searchTracer) AfterPoemRetrieval(poems []*core.Poem) {
	slog.Debug("hydrated candidates", "poems", len(poems))
}

func (t *searchTracer) Finish(hits []*core.PoemHit) {
	slog.Debug("search finished", "hits", len(hits))
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	userID := core.ID(c.Uint64("user"))
	agentID := core.ID(c.Uint64("agent"))

	agent, err := db.AgentRepository().GetAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to load agent %d: %w", agentID, err)
	}

	conversation, err := db.ConversationRepository().AddConversation(ctx, &core.Conversation{
		UserId:  userID,
		AgentId: agentID,
		Title:   agent.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	orchestrator, err := db.NewOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Conversation %d with %s (%s). Ctrl-D to exit.\n",
		conversation.Id, agent.Name, agent.Workflow)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		reply, err := orchestrator.RunTurn(ctx, chat.TurnParams{
			ConversationId: conversation.Id,
			UserId:         userID,
			Input:          input,
			Mode:           retrieval.Mode(c.String("mode")),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply.Content)
	}
	return scanner.Err()
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := core.HashPassword(c.String("password"))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := db.UserRepository().AddUser(ctx, &core.User{
		Email:        c.String("email"),
		Nickname:     "诗友",
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Created user %d (%s)\n", user.Id, user.Email)

	agents, err := db.AgentRepository().AddAgents(ctx,
		&core.Agent{
			Name:         "诗词助手",
			SystemPrompt: "你是一位精通中国古典诗词的助手。回答时引用资料中的诗词原文，并给出简明的解释。",
			Workflow:     core.WorkflowRagChat,
		},
		&core.Agent{
			Name:         "飞花令",
			SystemPrompt: "我们来玩飞花令。双方轮流说出包含指定字的诗句，不能重复已经说过的句子。",
			Workflow:     core.WorkflowPoetryGame,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create agents: %w", err)
	}
	for _, agent := range agents {
		fmt.Fprintf(os.Stderr, "Created agent %d (%s, %s)\n", agent.Id, agent.Name, agent.Workflow)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
