// Package mcp provides an MCP (Model Context Protocol) server for contagion.
// It exposes the graph store and the simulation engine as tools so an agent
// can import graphs, play games and read standings.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/contagion/internal/config"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/ratelimit"
	"github.com/nvandessel/contagion/internal/store"
)

// Server wraps the MCP SDK server with a graph store and run settings.
type Server struct {
	server       *sdk.Server
	store        store.GraphStore
	settings     *config.ContagionConfig
	root         string
	logger       *slog.Logger
	decisions    *logging.DecisionLogger
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "contagion")
	Version string // Server version
	Root    string // Project root directory

	// Settings are the layered project settings. Nil loads them from Root.
	Settings *config.ContagionConfig

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger
}

// NewServer opens the configured store and registers the contagion tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		loaded, err := config.Load(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		settings = loaded
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	graphStore, err := store.Open(settings.Storage.Backend, cfg.Root, settings.DBPath(cfg.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	contagionDir := store.LocalContagionPath(cfg.Root)
	s := &Server{
		server:       mcpServer,
		store:        graphStore,
		settings:     settings,
		root:         cfg.Root,
		logger:       logger,
		decisions:    logging.NewDecisionLogger(contagionDir, settings.Logging.Level),
		toolLimiters: ratelimit.NewToolLimiters(),
		auditLogger:  NewAuditLogger(contagionDir),
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves MCP over stdio until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server started", "root", s.root, "backend", s.settings.Storage.Backend)
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.logger.Info("mcp server stopped")
	return err
}

// Close releases the store and log files.
func (s *Server) Close() error {
	s.decisions.Close()
	if err := s.auditLogger.Close(); err != nil {
		s.store.Close()
		return err
	}
	return s.store.Close()
}
