package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/saeidalz13/battleship-heatmap/db/sqlc"
	mc "github.com/saeidalz13/battleship-heatmap/models/connection"
	"github.com/saeidalz13/battleship-heatmap/models/game"
	"golang.org/x/sync/errgroup"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	shutdownTimeout = time.Second * 10
)

var (
	defaultPort int = 8000
)

type Server struct {
	port           int
	stage          string
	db             *sql.DB
	gameConfig     game.Config
	GameManager    *game.AIGameManager
	SessionManager *mc.AISessionManager
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) *Server {
	server := Server{
		port:       defaultPort,
		stage:      StageDev,
		gameConfig: game.DefaultConfig(),
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	server.SessionManager = mc.NewAISessionManager()
	server.GameManager = game.NewAIGameManager()

	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		s.db = db
		return nil
	}
}

func WithGameConfig(cfg game.Config) Option {
	return func(s *Server) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.gameConfig = cfg
		return nil
	}
}

// Sessions served by the handler are closed once ctx is done.
func (s *Server) Handler(ctx context.Context) http.Handler {
	var q sqlc.Querier
	if s.db != nil {
		q = sqlc.New(s.db)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", NewRequestProcessor(ctx, s.SessionManager, s.GameManager, q, s.gameConfig))
	return mux
}

// Run serves until ctx is done, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr: fmt.Sprintf("0.0.0.0:%d", s.port),
	}

	g, gctx := errgroup.WithContext(ctx)
	httpServer.Handler = s.Handler(gctx)

	g.Go(func() error {
		s.GameManager.CleanupPeriodically(gctx)
		return nil
	})
	g.Go(func() error {
		s.SessionManager.CleanupPeriodically(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("listening", "port", s.port, "stage", s.stage)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
