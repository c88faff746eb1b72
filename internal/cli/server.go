package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/claudio1988-dev/talatrivia/internal/app"
	"github.com/claudio1988-dev/talatrivia/internal/auth"
	"github.com/claudio1988-dev/talatrivia/internal/config"
	"github.com/claudio1988-dev/talatrivia/internal/domain"
	"github.com/claudio1988-dev/talatrivia/internal/infra/memory"
	"github.com/claudio1988-dev/talatrivia/internal/infra/postgres"
	redisinfra "github.com/claudio1988-dev/talatrivia/internal/infra/redis"
	transport "github.com/claudio1988-dev/talatrivia/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var users app.UserRepository
	var catalog app.CatalogAdmin
	var trivias app.TriviaAdmin
	var ledger app.ParticipationLedger

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		users = postgres.NewUsers(pool)
		catalog = postgres.NewCatalog(pool)
		trivias = postgres.NewTriviaStore(pool)
		ledger = postgres.NewLedger(pool)
	} else {
		memCatalog := memory.NewCatalog()
		memUsers := memory.NewUsers()
		users = memUsers
		catalog = memCatalog
		trivias = memory.NewTriviaStore(memCatalog)
		ledger = memory.NewLedger(memUsers)
	}

	var cache app.RankingCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = redisinfra.NewRankingCache(client, config.TTLDuration(cfg.Ranking.TTL, 10*time.Minute))
	}

	playService := app.NewPlayService(catalog, trivias, ledger)
	rankingService := app.NewRankingService(trivias, ledger, cache)
	playService.SetNotifier(rankingService)
	adminService := app.NewAdminService(users, catalog, trivias, ledger)

	if cfg.Postgres.URL == "" {
		if err := seedDemoData(ctx, adminService); err != nil {
			return err
		}
		log.Println("no postgres configured, serving in-memory demo data")
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = "default-secret-key"
	}
	tokens := auth.NewIssuer(secret, config.TTLDuration(cfg.Auth.TTL, 24*time.Hour))

	handler := transport.NewHandler(playService, rankingService, adminService, users, tokens)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemoData loads a minimal playable data set for the in-memory mode.
func seedDemoData(ctx context.Context, admin *app.AdminService) error {
	alice, err := admin.CreateUser(ctx, "Alice", "alice@example.com", domain.RolePlayer)
	if err != nil {
		return err
	}
	bob, err := admin.CreateUser(ctx, "Bob", "bob@example.com", domain.RolePlayer)
	if err != nil {
		return err
	}

	questions := []struct {
		text       string
		difficulty domain.Difficulty
		options    []string
		correct    int
	}{
		{"What is 2 + 2?", domain.Easy, []string{"3", "4", "5"}, 1},
		{"Which planet is known as the Red Planet?", domain.Medium, []string{"Venus", "Jupiter", "Mars"}, 2},
		{"In what year did the Berlin Wall fall?", domain.Hard, []string{"1989", "1991", "1987"}, 0},
	}
	questionIDs := make([]int64, 0, len(questions))
	for _, q := range questions {
		opts := make([]domain.Option, 0, len(q.options))
		for i, text := range q.options {
			opts = append(opts, domain.Option{Text: text, Correct: i == q.correct})
		}
		created, err := admin.CreateQuestion(ctx, q.text, q.difficulty, opts)
		if err != nil {
			return err
		}
		questionIDs = append(questionIDs, created.ID)
	}

	_, err = admin.CreateTrivia(ctx, "Demo Trivia", "Warm-up round", questionIDs, []int64{alice.ID, bob.ID})
	return err
}
