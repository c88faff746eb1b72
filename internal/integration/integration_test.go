package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/claudio1988-dev/talatrivia/internal/app"
	"github.com/claudio1988-dev/talatrivia/internal/domain"
	"github.com/claudio1988-dev/talatrivia/internal/infra/postgres"
	pgmigrations "github.com/claudio1988-dev/talatrivia/internal/infra/postgres/migrations"
	redisinfra "github.com/claudio1988-dev/talatrivia/internal/infra/redis"
)

func TestSubmitLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	users := postgres.NewUsers(pool)
	catalog := postgres.NewCatalog(pool)
	trivias := postgres.NewTriviaStore(pool)
	ledger := postgres.NewLedger(pool)
	cache := redisinfra.NewRankingCache(redisClient, 5*time.Minute)

	admin := app.NewAdminService(users, catalog, trivias, ledger)
	play := app.NewPlayService(catalog, trivias, ledger)
	ranking := app.NewRankingService(trivias, ledger, cache)
	play.SetNotifier(ranking)

	alice, err := admin.CreateUser(ctx, "Alice", "alice@example.com", domain.RolePlayer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	bob, err := admin.CreateUser(ctx, "Bob", "bob@example.com", domain.RolePlayer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	var questions []domain.Question
	var questionIDs []int64
	for _, d := range []domain.Difficulty{domain.Easy, domain.Easy, domain.Medium, domain.Medium, domain.Hard, domain.Hard} {
		q, err := admin.CreateQuestion(ctx, "Question "+string(d), d, []domain.Option{
			{Text: "Wrong", Correct: false},
			{Text: "Right", Correct: true},
		})
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
		questions = append(questions, q)
		questionIDs = append(questionIDs, q.ID)
	}
	trivia, err := admin.CreateTrivia(ctx, "Integration Trivia", "", questionIDs, []int64{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("create trivia: %v", err)
	}

	answers := make([]domain.AnswerSubmission, 0, len(questions))
	for _, q := range questions {
		correct, ok := q.CorrectOption()
		if !ok {
			t.Fatalf("question %d missing correct option", q.ID)
		}
		answers = append(answers, domain.AnswerSubmission{QuestionID: q.ID, OptionID: correct.ID})
	}

	// Alice double-submits concurrently; the conditional update in the
	// ledger must let exactly one pass.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = play.Submit(ctx, alice.ID, trivia.ID, answers)
		}(i)
	}
	wg.Wait()

	completedRuns := 0
	for _, err := range errs {
		if err == nil {
			completedRuns++
		} else if !errors.Is(err, domain.ErrAlreadyCompleted) {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if completedRuns != 1 {
		t.Fatalf("expected exactly one successful submit, got %d", completedRuns)
	}

	participation, err := ledger.Find(ctx, alice.ID, trivia.ID)
	if err != nil {
		t.Fatalf("find participation: %v", err)
	}
	if !participation.Completed || participation.Score != 12 {
		t.Fatalf("expected completed participation with score 12, got %+v", participation)
	}
	count, err := ledger.CountAnswers(ctx, participation.ID)
	if err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != len(answers) {
		t.Fatalf("expected %d answer records, got %d", len(answers), count)
	}

	// Bob answers half; ranking comes back ordered with the pending player excluded.
	if _, err := play.Submit(ctx, bob.ID, trivia.ID, answers[:3]); err != nil {
		t.Fatalf("submit bob: %v", err)
	}

	result, err := ranking.Rank(ctx, trivia.ID)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 ranked players, got %d", len(result.Entries))
	}
	if result.Entries[0].User != "Alice" || result.Entries[0].Score != 12 {
		t.Fatalf("expected Alice leading with 12, got %+v", result.Entries[0])
	}
	if result.Entries[1].User != "Bob" || result.Entries[1].Score != 4 {
		t.Fatalf("expected Bob with 4 (2 easy + 1 medium), got %+v", result.Entries[1])
	}

	// The second read is served from the Redis cache.
	again, err := ranking.Rank(ctx, trivia.ID)
	if err != nil {
		t.Fatalf("rank again: %v", err)
	}
	if !again.UpdatedAt.Equal(result.UpdatedAt) {
		t.Fatalf("expected cached ranking, got recomputed one: %v vs %v", again.UpdatedAt, result.UpdatedAt)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
