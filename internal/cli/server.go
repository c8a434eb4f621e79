package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/config"
	"classroom-quiz-service/internal/infra/memory"
	"classroom-quiz-service/internal/infra/postgres"
	infraredis "classroom-quiz-service/internal/infra/redis"
	transport "classroom-quiz-service/internal/transport/http"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores groups the persistence adapters chosen by config.
type stores struct {
	quizzes    app.QuizStore
	results    app.ResultStore
	attendance app.AttendanceStore
	close      func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	attemptGrace := config.TTLDuration(cfg.Quiz.AttemptGrace, 2*time.Hour)
	var quizRepo app.QuizRepository
	var attempts app.AttemptRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, st.quizzes, quizTTL)
		attempts = infraredis.NewAttemptStore(redisClient, attemptGrace)
	} else {
		quizRepo = memory.NewQuizRepository(st.quizzes, quizTTL)
		attempts = memory.NewAttemptStore()
	}

	recorder := app.NewAttendanceRecorder(st.attendance, log, app.WithLocation(loc))
	service := app.NewQuizService(st.quizzes, quizRepo, st.results, attempts, recorder,
		app.WithLogger(log),
		app.WithDefaultTimeLimit(cfg.DefaultTimeLimit()),
		app.WithResubmission(cfg.Quiz.AllowResubmit),
		app.WithAttemptLifetime(attemptGrace),
	)

	validate := validator.New()
	router := transport.NewRouter(
		transport.NewQuizHandler(service, validate, log),
		transport.NewAttendanceHandler(recorder, validate, log),
		transport.NewWSHandler(service, log),
		log,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStores connects to Postgres when configured and migrates it; otherwise
// everything lives in memory.
func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (stores, error) {
	if cfg.Postgres.URL == "" {
		log.Warn("postgres not configured, using in-memory stores")
		return stores{
			quizzes:    memory.NewQuizStore(),
			results:    memory.NewResultStore(),
			attendance: memory.NewAttendanceStore(),
			close:      func() {},
		}, nil
	}

	db, err := openBun(cfg)
	if err != nil {
		return stores{}, err
	}
	if err := migrateDB(ctx, db, log); err != nil {
		db.Close()
		return stores{}, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return stores{}, err
	}
	return postgresStores(db, pool), nil
}

func postgresStores(db *bun.DB, pool *pgxpool.Pool) stores {
	return stores{
		quizzes:    postgres.NewQuizStore(pool),
		results:    postgres.NewResultStore(db),
		attendance: postgres.NewAttendanceStore(db),
		close: func() {
			pool.Close()
			db.Close()
		},
	}
}
