// Package servecmder provides the serve command that runs the chat server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/leadline/api"
	"github.com/papercomputeco/leadline/api/mcp"
	"github.com/papercomputeco/leadline/cmd/leadline/backends"
	"github.com/papercomputeco/leadline/pkg/analytics"
	analyticsutils "github.com/papercomputeco/leadline/pkg/analytics/utils"
	"github.com/papercomputeco/leadline/pkg/analytics/worker"
	"github.com/papercomputeco/leadline/pkg/assistant"
	"github.com/papercomputeco/leadline/pkg/config"
	"github.com/papercomputeco/leadline/pkg/credentials"
	"github.com/papercomputeco/leadline/pkg/generation"
	"github.com/papercomputeco/leadline/pkg/logger"
	"github.com/papercomputeco/leadline/pkg/metrics"
	"github.com/papercomputeco/leadline/pkg/prompt"
	"github.com/papercomputeco/leadline/pkg/retrieval"
)

// serveFlags are the registry flags "leadline serve" accepts.
var serveFlags = []string{
	config.FlagListen,
	config.FlagProject,
	config.FlagLocation,
	config.FlagModel,
	config.FlagGenerationTarget,
	config.FlagRetrievalProvider,
	config.FlagRetrievalEngine,
	config.FlagRetrievalTarget,
	config.FlagCollection,
	config.FlagTopK,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagAnalyticsProvider,
	config.FlagAnalyticsTarget,
	config.FlagAnalyticsTopic,
	config.FlagPolicyFile,
}

type ServeCommander struct {
	flagValues map[string]*string
	topK       uint
	debug      bool
	configDir  string

	cfg    *config.Config
	logger *slog.Logger
}

const serveLongDesc string = `Run the leadline chat server.

The server answers POST / and POST /chat with the assistant reply, exposes
Prometheus metrics on /metrics and the conversation tools over MCP on /mcp.

Flags override LEADLINE_* environment variables, which override config.toml.

Examples:
  leadline serve
  leadline serve --listen :9090 --model gemini-2.5-pro
  leadline serve --retrieval-provider qdrant --retrieval-target localhost:6334
  leadline serve --analytics-provider sqlite --analytics-target leadline.sqlite`

const serveShortDesc string = "Run the leadline chat server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{flagValues: map[string]*string{}}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cfg, err := loadConfig(cmd, cmder.configDir)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	for _, key := range serveFlags {
		if key == config.FlagTopK {
			config.AddUintFlag(cmd, config.Flags, key, &cmder.topK)
			continue
		}
		target := new(string)
		cmder.flagValues[key] = target
		config.AddStringFlag(cmd, config.Flags, key, target)
	}

	return cmd
}

func loadConfig(cmd *cobra.Command, configDir string) (*config.Config, error) {
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.logger = logger.New(logger.WithJSON(true), logger.WithDebug(c.debug))
	m := metrics.New(metrics.DefaultNamespace)

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	gen, err := c.newGeneration(ctx, creds, m)
	if err != nil {
		return err
	}

	retr, closeRetrieval, err := c.newRetrieval(ctx, creds, m)
	if err != nil {
		return err
	}
	defer closeRetrieval()

	policy, err := prompt.NewPolicyStore(c.cfg.Prompt.PolicyFile, c.logger)
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	go func() {
		if err := policy.Watch(ctx); err != nil {
			c.logger.Warn("policy watcher stopped", "error", err)
		}
	}()
	assembler := prompt.NewAssembler(c.cfg.Assistant.Name, c.cfg.Assistant.School, policy)

	publisher, err := analyticsutils.NewPublisher(ctx, &analyticsutils.NewPublisherOpts{
		ProviderType: c.cfg.Analytics.Provider,
		Target:       c.cfg.Analytics.Target,
		Topic:        c.cfg.Analytics.Topic,
	})
	if err != nil {
		return fmt.Errorf("creating analytics publisher: %w", err)
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher:  publisher,
		NumWorkers: c.cfg.Analytics.Workers,
		QueueSize:  c.cfg.Analytics.QueueSize,
		Logger:     c.logger,
		Metrics:    m,
	})
	if err != nil {
		return fmt.Errorf("creating analytics pool: %w", err)
	}
	// Drains queued events before the publisher closes.
	defer pool.Close()

	svc, err := assistant.NewService(&assistant.Config{
		Generation:    gen,
		Prompt:        assembler,
		Retrieval:     retr,
		Sink:          analytics.NewSink(c.logger, pool),
		HistoryWindow: int(c.cfg.Assistant.HistoryWindow),
		Logger:        c.logger,
		Metrics:       m,
	})
	if err != nil {
		return fmt.Errorf("creating assistant: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Retrieval: retr,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.Server.Listen,
		Metrics:    m,
		MCP:        mcpServer.Handler(),
	}, svc, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting leadline",
		"listen", c.cfg.Server.Listen,
		"model", gen.Model(),
		"retrieval_provider", c.cfg.Retrieval.Provider,
		"analytics_provider", c.cfg.Analytics.Provider,
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	if err := server.Shutdown(); err != nil {
		c.logger.Error("shutting down API server", "error", err)
	}
	return nil
}

func (c *ServeCommander) newGeneration(ctx context.Context, creds *credentials.Manager, m *metrics.Metrics) (*generation.Client, error) {
	tokens, err := creds.ForService(ctx, credentials.ServiceVertex)
	if err != nil {
		return nil, fmt.Errorf("resolving vertex credentials: %w", err)
	}

	g := c.cfg.Generation
	vertex, err := generation.NewVertex(generation.VertexConfig{
		Project:     g.Project,
		Location:    g.Location,
		Model:       g.Model,
		Endpoint:    g.Endpoint,
		TokenSource: tokens,
		Logger:      c.logger,
	})
	if err != nil {
		return nil, err
	}

	return generation.NewClient(vertex,
		generation.WithModel(g.Model),
		generation.WithDefaults(int(g.MaxOutputTokens), g.Temperature),
		generation.WithTopP(g.TopP),
		generation.WithStreaming(!g.DisableStreaming),
		generation.WithLogger(c.logger),
		generation.WithMetrics(m),
	), nil
}

// newRetrieval returns a nil client when the provider is "none". The
// returned func releases backend connections.
func (c *ServeCommander) newRetrieval(ctx context.Context, creds *credentials.Manager, m *metrics.Metrics) (*retrieval.Client, func(), error) {
	client, closer, err := backends.NewRetriever(ctx, c.cfg, creds)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		c.logger.Warn("retrieval disabled, replies will not be grounded")
		return nil, closer, nil
	}
	return retrieval.NewClient(client,
		retrieval.WithTopK(int(c.cfg.Retrieval.TopK)),
		retrieval.WithLogger(c.logger),
		retrieval.WithMetrics(m),
	), closer, nil
}
