package app

import (
	"context"
	"time"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// CatalogRepository reads question content (questions and their options).
type CatalogRepository interface {
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	GetOption(ctx context.Context, id int64) (domain.Option, error)
}

// CatalogAdmin extends the catalog with authoring operations.
type CatalogAdmin interface {
	CatalogRepository
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// TriviaRepository reads trivia definitions and their bound question sets.
type TriviaRepository interface {
	GetTrivia(ctx context.Context, id int64) (domain.Trivia, error)
	QuestionsOf(ctx context.Context, triviaID int64) ([]domain.Question, error)
}

// TriviaAdmin extends the trivia store with authoring operations. The question
// set is fixed at creation; there is no add/remove afterwards.
type TriviaAdmin interface {
	TriviaRepository
	CreateTrivia(ctx context.Context, t domain.Trivia, questionIDs []int64) (domain.Trivia, error)
	ListTrivias(ctx context.Context) ([]domain.Trivia, error)
	DeleteTrivia(ctx context.Context, id int64) error
}

// UserRepository holds player and admin accounts.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ParticipationLedger tracks attempt state per (player, trivia) pair.
//
// Complete is the one atomic unit of the whole system: it must set the score,
// flip the completion latch, and append the answer records only if the
// participation is still pending, returning domain.ErrAlreadyCompleted
// otherwise. Two concurrent calls for the same participation must score at
// most once.
type ParticipationLedger interface {
	Find(ctx context.Context, userID, triviaID int64) (domain.Participation, error)
	FindByUser(ctx context.Context, userID int64) ([]domain.Participation, error)
	Create(ctx context.Context, userID, triviaID int64) (domain.Participation, error)
	Complete(ctx context.Context, participationID int64, score int, completedAt time.Time, answers []domain.Answer) error
	ListCompleted(ctx context.Context, triviaID int64) ([]domain.CompletedParticipation, error)
}
