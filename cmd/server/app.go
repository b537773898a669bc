package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookwise/bookwise-api/internal/config"
	"github.com/bookwise/bookwise-api/internal/events"
	"github.com/bookwise/bookwise-api/internal/netcheck"
	"github.com/bookwise/bookwise-api/internal/platform/gemini"
	"github.com/bookwise/bookwise-api/internal/platform/postgres"
	"github.com/bookwise/bookwise-api/internal/service"
	"github.com/bookwise/bookwise-api/internal/service/auth"
	"github.com/bookwise/bookwise-api/internal/task"
)

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	netMonitor *netcheck.Monitor
	taskRunner *task.TaskRunner

	jwtService   auth.JWTService
	userService  service.UserService
	bookService  service.BookService
	studyService service.StudyService
}

// newApplication wires stores, the connectivity monitor, the Gemini
// generator, the task runner, and the services together.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, logger)
	bookStore := postgres.NewPostgresBookStore(db, logger)
	promptStore := postgres.NewPostgresPromptStore(db, logger)
	attemptStore := postgres.NewPostgresAttemptStore(db, logger)

	// The monitor gates Gemini calls: when the probe says we are offline,
	// generation fails fast instead of burning its retry budget.
	netMonitor := netcheck.NewMonitor(netcheck.MonitorConfig{
		ProbeAddr:     cfg.Network.ProbeAddr,
		ProbeInterval: time.Duration(cfg.Network.ProbeIntervalSeconds) * time.Second,
		ProbeTimeout:  time.Duration(cfg.Network.ProbeTimeoutSeconds) * time.Second,
	}, logger)

	generator, err := gemini.NewGenerator(ctx, logger, cfg.LLM, netMonitor)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt generator: %w", err)
	}

	eventEmitter := events.NewInMemoryEventEmitter(logger)

	bookService, err := service.NewBookService(bookStore, eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create book service: %w", err)
	}

	promptSaver := service.NewPromptSaver(promptStore, logger)
	taskFactory := task.NewPromptGenerationTaskFactory(bookService, generator, promptSaver, logger)

	taskStore := postgres.NewPostgresTaskStore(db, taskFactory, logger)
	taskRunner := task.NewTaskRunner(taskStore, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(cfg.Task.StuckCheckIntervalMins) * time.Minute,
	}, logger)

	eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, taskRunner, logger))

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userService, err := service.NewUserService(
		userStore,
		db,
		auth.NewBcryptHasher(0),
		auth.NewBcryptVerifier(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	studyService, err := service.NewStudyService(promptStore, attemptStore, generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	return &application{
		config:       cfg,
		logger:       logger,
		db:           db,
		netMonitor:   netMonitor,
		taskRunner:   taskRunner,
		jwtService:   jwtService,
		userService:  userService,
		bookService:  bookService,
		studyService: studyService,
	}, nil
}

// Run starts the background workers and the HTTP server, blocking until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	app.netMonitor.Start()

	if err := app.taskRunner.Start(); err != nil {
		app.netMonitor.Stop()
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup stops the background components in reverse start order.
func (app *application) cleanup() {
	app.taskRunner.Stop()
	app.netMonitor.Stop()
}
