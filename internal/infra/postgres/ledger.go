package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// Ledger is the Postgres participation ledger.
//
// Complete performs the check-and-latch as a single conditional UPDATE
// (`... WHERE id=$1 AND completed=FALSE`) inside a transaction that also
// appends the answer records, so two racing submits can never both score.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Find(ctx context.Context, userID, triviaID int64) (domain.Participation, error) {
	var p domain.Participation
	err := l.pool.QueryRow(ctx,
		`SELECT id, user_id, trivia_id, score, completed, started_at, completed_at
		   FROM trivia_participations WHERE user_id=$1 AND trivia_id=$2`,
		userID, triviaID,
	).Scan(&p.ID, &p.UserID, &p.TriviaID, &p.Score, &p.Completed, &p.StartedAt, &p.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participation{}, domain.ErrParticipationNotFound
	}
	if err != nil {
		return domain.Participation{}, fmt.Errorf("find participation: %w", err)
	}
	return p, nil
}

func (l *Ledger) FindByUser(ctx context.Context, userID int64) ([]domain.Participation, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, user_id, trivia_id, score, completed, started_at, completed_at
		   FROM trivia_participations WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("participations by user: %w", err)
	}
	defer rows.Close()

	var participations []domain.Participation
	for rows.Next() {
		var p domain.Participation
		if err := rows.Scan(&p.ID, &p.UserID, &p.TriviaID, &p.Score, &p.Completed, &p.StartedAt, &p.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		participations = append(participations, p)
	}
	return participations, rows.Err()
}

func (l *Ledger) Create(ctx context.Context, userID, triviaID int64) (domain.Participation, error) {
	p := domain.Participation{UserID: userID, TriviaID: triviaID}
	err := l.pool.QueryRow(ctx,
		`INSERT INTO trivia_participations (user_id, trivia_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, trivia_id) DO NOTHING
		 RETURNING id, started_at`,
		userID, triviaID,
	).Scan(&p.ID, &p.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participation{}, domain.ErrDuplicateParticipation
	}
	if err != nil {
		return domain.Participation{}, fmt.Errorf("create participation: %w", err)
	}
	return p, nil
}

func (l *Ledger) Complete(ctx context.Context, participationID int64, score int, completedAt time.Time, answers []domain.Answer) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE trivia_participations
		    SET score=$2, completed=TRUE, completed_at=$3
		  WHERE id=$1 AND completed=FALSE`,
		participationID, score, completedAt,
	)
	if err != nil {
		return fmt.Errorf("latch participation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already completed or unknown; tell them apart for the caller.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM trivia_participations WHERE id=$1)`, participationID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check participation: %w", err)
		}
		if !exists {
			return domain.ErrParticipationNotFound
		}
		return domain.ErrAlreadyCompleted
	}

	for _, ans := range answers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_answers (participation_id, question_id, selected_option_id, is_correct, points_awarded)
			 VALUES ($1, $2, $3, $4, $5)`,
			participationID, ans.QuestionID, ans.SelectedOptionID, ans.Correct, ans.PointsAwarded,
		); err != nil {
			return fmt.Errorf("append answer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (l *Ledger) ListCompleted(ctx context.Context, triviaID int64) ([]domain.CompletedParticipation, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT p.user_id, u.name, p.score, p.completed_at
		   FROM trivia_participations p
		   JOIN users u ON u.id = p.user_id
		  WHERE p.trivia_id=$1 AND p.completed
		  ORDER BY p.score DESC, p.completed_at ASC, u.name ASC`,
		triviaID)
	if err != nil {
		return nil, fmt.Errorf("list completed: %w", err)
	}
	defer rows.Close()

	var completed []domain.CompletedParticipation
	for rows.Next() {
		var p domain.CompletedParticipation
		if err := rows.Scan(&p.UserID, &p.UserName, &p.Score, &p.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completed: %w", err)
		}
		completed = append(completed, p)
	}
	return completed, rows.Err()
}

// CountAnswers reports the answer records of a participation; integration
// tests use it to prove the exactly-once property.
func (l *Ledger) CountAnswers(ctx context.Context, participationID int64) (int, error) {
	var n int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM user_answers WHERE participation_id=$1`, participationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}
