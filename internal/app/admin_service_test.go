package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/claudio1988-dev/talatrivia/internal/app"
	"github.com/claudio1988-dev/talatrivia/internal/domain"
	"github.com/claudio1988-dev/talatrivia/internal/infra/memory"
)

func newAdmin(t *testing.T) (*app.AdminService, *memory.Ledger) {
	t.Helper()
	catalog := memory.NewCatalog()
	users := memory.NewUsers()
	ledger := memory.NewLedger(users)
	return app.NewAdminService(users, catalog, memory.NewTriviaStore(catalog), ledger), ledger
}

func TestCreateQuestionRequiresExactlyOneCorrectOption(t *testing.T) {
	admin, _ := newAdmin(t)
	ctx := context.Background()

	cases := map[string][]domain.Option{
		"no correct option": {
			{Text: "A", Correct: false},
			{Text: "B", Correct: false},
		},
		"two correct options": {
			{Text: "A", Correct: true},
			{Text: "B", Correct: true},
		},
		"single option": {
			{Text: "A", Correct: true},
		},
	}
	for name, options := range cases {
		if _, err := admin.CreateQuestion(ctx, "Q", domain.Easy, options); !errors.Is(err, domain.ErrInvalidQuestion) {
			t.Errorf("%s: expected ErrInvalidQuestion, got %v", name, err)
		}
	}
}

func TestCreateQuestionRejectsUnknownDifficulty(t *testing.T) {
	admin, _ := newAdmin(t)

	_, err := admin.CreateQuestion(context.Background(), "Q", domain.Difficulty("TRIVIAL"), []domain.Option{
		{Text: "A", Correct: true},
		{Text: "B", Correct: false},
	})
	if !errors.Is(err, domain.ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestCreateTriviaOpensParticipations(t *testing.T) {
	admin, ledger := newAdmin(t)
	ctx := context.Background()

	player, err := admin.CreateUser(ctx, "Alice", "alice@example.com", domain.RolePlayer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	question, err := admin.CreateQuestion(ctx, "Q", domain.Medium, []domain.Option{
		{Text: "A", Correct: true},
		{Text: "B", Correct: false},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	trivia, err := admin.CreateTrivia(ctx, "T", "desc", []int64{question.ID}, []int64{player.ID})
	if err != nil {
		t.Fatalf("create trivia: %v", err)
	}

	participation, err := ledger.Find(ctx, player.ID, trivia.ID)
	if err != nil {
		t.Fatalf("expected participation for invited player: %v", err)
	}
	if participation.Completed || participation.Score != 0 {
		t.Fatalf("expected fresh pending participation, got %+v", participation)
	}
}

func TestCreateTriviaRejectsUnknownReferences(t *testing.T) {
	admin, _ := newAdmin(t)
	ctx := context.Background()

	question, err := admin.CreateQuestion(ctx, "Q", domain.Hard, []domain.Option{
		{Text: "A", Correct: true},
		{Text: "B", Correct: false},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	if _, err := admin.CreateTrivia(ctx, "T", "", []int64{9999}, nil); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := admin.CreateTrivia(ctx, "T", "", []int64{question.ID}, []int64{9999}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateUserDefaultsToPlayerRole(t *testing.T) {
	admin, _ := newAdmin(t)

	user, err := admin.CreateUser(context.Background(), "Alice", "alice@example.com", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Role != domain.RolePlayer {
		t.Fatalf("expected player role, got %q", user.Role)
	}
}
