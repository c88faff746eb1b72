package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/claudio1988-dev/talatrivia/internal/app"
	"github.com/claudio1988-dev/talatrivia/internal/config"
	"github.com/claudio1988-dev/talatrivia/internal/domain"
	"github.com/claudio1988-dev/talatrivia/internal/infra/postgres"
)

// NewSeedCmd loads a demo data set: an admin, five players, a question bank
// across every difficulty, and one trivia with the full roster invited.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo users, questions, and a trivia",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := postgres.NewUsers(pool)
	catalog := postgres.NewCatalog(pool)
	trivias := postgres.NewTriviaStore(pool)
	ledger := postgres.NewLedger(pool)
	admin := app.NewAdminService(users, catalog, trivias, ledger)

	if _, err := admin.CreateUser(ctx, "Admin Talana", "admin@talana.com", domain.RoleAdmin); err != nil {
		return err
	}
	playerIDs := make([]int64, 0, 5)
	for i := 1; i <= 5; i++ {
		player, err := admin.CreateUser(ctx,
			fmt.Sprintf("Jugador %d", i),
			fmt.Sprintf("jugador%d@talana.com", i),
			domain.RolePlayer,
		)
		if err != nil {
			return err
		}
		playerIDs = append(playerIDs, player.ID)
	}

	bank := []struct {
		text       string
		difficulty domain.Difficulty
		options    []string
		correct    int
	}{
		{"What is 2 + 2?", domain.Easy, []string{"3", "4", "5"}, 1},
		{"What color is the sky on a clear day?", domain.Easy, []string{"Green", "Blue", "Red"}, 1},
		{"Which planet is known as the Red Planet?", domain.Medium, []string{"Venus", "Mars", "Jupiter"}, 1},
		{"Who wrote Don Quixote?", domain.Medium, []string{"Cervantes", "Borges", "Neruda"}, 0},
		{"In what year did the Berlin Wall fall?", domain.Hard, []string{"1987", "1989", "1991"}, 1},
		{"What is the smallest prime greater than 100?", domain.Hard, []string{"101", "103", "107"}, 0},
	}
	questionIDs := make([]int64, 0, len(bank))
	for _, q := range bank {
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

	trivia, err := admin.CreateTrivia(ctx, "Trivia Talana", "Trivia de bienvenida", questionIDs, playerIDs)
	if err != nil {
		return err
	}

	log.Printf("seeded %d players, %d questions, trivia %d", len(playerIDs), len(questionIDs), trivia.ID)
	return nil
}
