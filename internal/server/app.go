// Package server wires the application together: configuration, logging,
// database, the account service, and the HTTP endpoint, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkarpis/accountd/internal/logging"
	"github.com/mkarpis/accountd/internal/server/auth"
	"github.com/mkarpis/accountd/internal/server/config"
	gql "github.com/mkarpis/accountd/internal/server/graphql"
	"github.com/mkarpis/accountd/internal/server/httpserver"
	"github.com/mkarpis/accountd/internal/server/password"
	"github.com/mkarpis/accountd/internal/server/repositories/repomanager"
	"github.com/mkarpis/accountd/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	rm       repomanager.RepositoryManager
	accounts *services.AccountService
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	accounts := services.NewAccountService(db, rm,
		password.NewBcryptHasher(),
		auth.NewIssuer([]byte(cfg.SecretKey), cfg.TokenValidityDuration))

	return &App{config: cfg, logger: logger, db: db, rm: rm, accounts: accounts}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	schema, err := gql.NewSchema(app.accounts, app.logger)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := httpserver.NewServer(app.config.EndpointAddr, app.logger, schema)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.rm.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migration error", "error", err.Error())
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
