package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// AdminService covers the authoring plumbing around the core: users,
// questions, and trivias with their invited rosters.
type AdminService struct {
	users   UserRepository
	catalog CatalogAdmin
	trivias TriviaAdmin
	ledger  ParticipationLedger
	now     func() time.Time
}

func NewAdminService(users UserRepository, catalog CatalogAdmin, trivias TriviaAdmin, ledger ParticipationLedger) *AdminService {
	return &AdminService{
		users:   users,
		catalog: catalog,
		trivias: trivias,
		ledger:  ledger,
		now:     time.Now,
	}
}

// SetClock is test-only for deterministic timestamps.
func (s *AdminService) SetClock(now func() time.Time) { s.now = now }

// CreateUser registers an account. Credentials are out of scope.
func (s *AdminService) CreateUser(ctx context.Context, name, email string, role domain.Role) (domain.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return domain.User{}, fmt.Errorf("%w: name and email are required", domain.ErrInvalidUser)
	}
	if role == "" {
		role = domain.RolePlayer
	}
	return s.users.CreateUser(ctx, domain.User{Name: name, Email: email, Role: role})
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// CreateQuestion validates and stores a question. Exactly one option must be
// flagged correct, and at least two options are required so there is a real
// choice to make.
func (s *AdminService) CreateQuestion(ctx context.Context, text string, difficulty domain.Difficulty, options []domain.Option) (domain.Question, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Question{}, fmt.Errorf("%w: empty text", domain.ErrInvalidQuestion)
	}
	if difficulty.Points() == 0 {
		return domain.Question{}, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}
	if len(options) < 2 {
		return domain.Question{}, fmt.Errorf("%w: at least two options required", domain.ErrInvalidQuestion)
	}
	correct := 0
	for _, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return domain.Question{}, fmt.Errorf("%w: option with empty text", domain.ErrInvalidQuestion)
		}
		if opt.Correct {
			correct++
		}
	}
	if correct != 1 {
		return domain.Question{}, fmt.Errorf("%w: exactly one correct option required, got %d", domain.ErrInvalidQuestion, correct)
	}
	return s.catalog.CreateQuestion(ctx, domain.Question{
		Text:       text,
		Difficulty: difficulty,
		Options:    options,
	})
}

func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.catalog.ListQuestions(ctx)
}

func (s *AdminService) DeleteQuestion(ctx context.Context, id int64) error {
	return s.catalog.DeleteQuestion(ctx, id)
}

// CreateTrivia binds a fixed question set and opens one pending participation
// per invited player. Questions and players must exist up front; the set is
// immutable afterwards.
func (s *AdminService) CreateTrivia(ctx context.Context, name, description string, questionIDs, playerIDs []int64) (domain.Trivia, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Trivia{}, fmt.Errorf("%w: empty name", domain.ErrInvalidTrivia)
	}
	for _, qid := range questionIDs {
		if _, err := s.catalog.GetQuestion(ctx, qid); err != nil {
			return domain.Trivia{}, err
		}
	}
	for _, uid := range playerIDs {
		if _, err := s.users.GetUser(ctx, uid); err != nil {
			return domain.Trivia{}, err
		}
	}

	trivia, err := s.trivias.CreateTrivia(ctx, domain.Trivia{
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}, questionIDs)
	if err != nil {
		return domain.Trivia{}, err
	}

	for _, uid := range playerIDs {
		if _, err := s.ledger.Create(ctx, uid, trivia.ID); err != nil {
			return domain.Trivia{}, err
		}
	}
	return trivia, nil
}

func (s *AdminService) ListTrivias(ctx context.Context) ([]domain.Trivia, error) {
	return s.trivias.ListTrivias(ctx)
}

func (s *AdminService) DeleteTrivia(ctx context.Context, id int64) error {
	return s.trivias.DeleteTrivia(ctx, id)
}
