package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/client/client"
	"github.com/dmitrijs2005/scimaterials/internal/client/config"
	"github.com/dmitrijs2005/scimaterials/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/scimaterials/internal/client/services"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/juju/clock"
	"golang.org/x/term"

	sched "github.com/dmitrijs2005/scimaterials/internal/client/uploads"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	pingTimeout  = 3 * time.Second
	flushTimeout = 5 * time.Second
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	config    *config.Config
	logger    logging.Logger
	clock     clock.Clock
	in        io.Reader
	out       io.Writer
	db        *sql.DB
	client    client.Client
	hub       *sched.Hub
	scheduler *sched.Scheduler
	uploads   services.UploadService
	files     services.FileService
	observers []func()

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing journal: %w", err)
	}

	apiClient, err := client.NewFileClient(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, logger, db, apiClient, clock.WallClock), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, apiClient client.Client, clk clock.Clock) *App {
	journal := uploads.NewSQLiteRepository(db)

	hub := sched.NewHub(logger)
	observers := []func(){
		hub.Subscribe(sched.LogObserver(logger)),
		hub.Subscribe(services.JournalObserver(journal, logger)),
	}

	scheduler := sched.NewScheduler(sched.NewQueue(c.QueueCapacity), apiClient, hub, logger,
		sched.WithPeriod(c.UploadInterval), sched.WithClock(clk))

	return &App{
		config:    c,
		logger:    logger,
		clock:     clk,
		in:        os.Stdin,
		out:       os.Stdout,
		db:        db,
		client:    apiClient,
		hub:       hub,
		scheduler: scheduler,
		uploads:   services.NewUploadService(scheduler, hub, journal, c.AuthorID, logger),
		files:     services.NewFileService(apiClient),
		observers: observers,
	}
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connection mode changed", "mode", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := string(a.mode)
	if n := a.scheduler.Pending(); n > 0 {
		s = strings.TrimSpace(fmt.Sprintf("%s %d queued", s, n))
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// connection mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	for {
		select {
		case <-a.clock.After(interval):
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.files.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until the REPL ends or a termination signal arrives, then
// stops the scheduler and releases resources.
func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	prompt := false
	if f, ok := a.in.(*os.File); ok {
		prompt = isTerminal(int(f.Fd()))
	}
	if prompt {
		printlnFn("Upload client (type 'help' for commands)")
	}

	// The REPL goroutine may stay blocked on stdin after a signal; the
	// process exits right after Run returns.
	go func() {
		runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in), prompt)
		cancelFunc()
	}()

	<-ctx.Done()
	wg.Wait()

	a.shutdown()
}

// shutdown stops the scheduler and lets observers record the final
// events before the journal is closed.
func (a *App) shutdown() {
	a.scheduler.Close()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	if err := a.hub.Flush(ctx); err != nil {
		a.logger.Warn(ctx, "pending state events were not recorded", "error", err)
	}
	cancel()

	a.uploads.Close()
	for _, unsubscribe := range a.observers {
		unsubscribe()
	}
	_ = a.client.Close()
	_ = a.db.Close()
	a.logger.Info(context.Background(), "App stopped")
}
