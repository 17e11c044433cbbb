// Package server wires configuration, metadata repository, hashing store and
// file service together and runs the gRPC endpoint until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/scimaterials/internal/filex"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/dmitrijs2005/scimaterials/internal/server/config"
	"github.com/dmitrijs2005/scimaterials/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scimaterials/internal/server/services"
	"github.com/dmitrijs2005/scimaterials/internal/server/store"

	gs "github.com/dmitrijs2005/scimaterials/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	fileService *services.FileService
}

// NewApp validates c and builds every dependency. Any error here is fatal.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if c.StorageBackend == config.BackendLocal {
		if _, err := filex.EnsureDir(c.BasePath); err != nil {
			return nil, fmt.Errorf("base path: %w", err)
		}
	}

	var (
		rm repomanager.RepositoryManager
		db *sql.DB
	)
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, metadata is kept in memory")
		rm = repomanager.NewMemoryRepositoryManager()
	} else {
		rm = repomanager.NewPostgresRepositoryManager()
		var err error
		db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN, rm)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	st, err := store.New(ctx, c)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	fs, err := services.NewFileService(rm.Files(db), st, c, logger)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, fileService: fs}, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.fileService,
		app.config.SecretKey, app.config.MaxConcurrentTransfers)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"backend", app.config.StorageBackend, "hash", app.config.HashAlgorithm,
		"overwrite", app.config.Overwrite, "auth", app.config.SecretKey != "")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeDB(app.db)
	app.logger.Info(context.Background(), "App stopped")
}
