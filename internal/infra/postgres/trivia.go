package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// TriviaStore is the Postgres trivia store. The bound question set is written
// once at creation and read back in its original order.
type TriviaStore struct {
	pool    *pgxpool.Pool
	catalog *Catalog
}

func NewTriviaStore(pool *pgxpool.Pool) *TriviaStore {
	return &TriviaStore{pool: pool, catalog: NewCatalog(pool)}
}

func (s *TriviaStore) GetTrivia(ctx context.Context, id int64) (domain.Trivia, error) {
	var trivia domain.Trivia
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM trivias WHERE id=$1`, id,
	).Scan(&trivia.ID, &trivia.Name, &trivia.Description, &trivia.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Trivia{}, domain.ErrTriviaNotFound
	}
	if err != nil {
		return domain.Trivia{}, fmt.Errorf("get trivia: %w", err)
	}
	return trivia, nil
}

func (s *TriviaStore) QuestionsOf(ctx context.Context, triviaID int64) ([]domain.Question, error) {
	if _, err := s.GetTrivia(ctx, triviaID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT question_id FROM trivia_questions WHERE trivia_id=$1 ORDER BY position, question_id`, triviaID)
	if err != nil {
		return nil, fmt.Errorf("trivia questions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		question, err := s.catalog.GetQuestion(ctx, id)
		if errors.Is(err, domain.ErrQuestionNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// CreateTrivia inserts the trivia and binds its question set in one
// transaction.
func (s *TriviaStore) CreateTrivia(ctx context.Context, t domain.Trivia, questionIDs []int64) (domain.Trivia, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Trivia{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO trivias (name, description, created_at) VALUES ($1, $2, $3) RETURNING id`,
		t.Name, t.Description, t.CreatedAt,
	).Scan(&t.ID); err != nil {
		return domain.Trivia{}, fmt.Errorf("insert trivia: %w", err)
	}
	for position, questionID := range questionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO trivia_questions (trivia_id, question_id, position) VALUES ($1, $2, $3)`,
			t.ID, questionID, position,
		); err != nil {
			return domain.Trivia{}, fmt.Errorf("bind question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trivia{}, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}

func (s *TriviaStore) ListTrivias(ctx context.Context) ([]domain.Trivia, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, created_at FROM trivias ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list trivias: %w", err)
	}
	defer rows.Close()

	var trivias []domain.Trivia
	for rows.Next() {
		var trivia domain.Trivia
		if err := rows.Scan(&trivia.ID, &trivia.Name, &trivia.Description, &trivia.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trivia: %w", err)
		}
		trivias = append(trivias, trivia)
	}
	return trivias, rows.Err()
}

func (s *TriviaStore) DeleteTrivia(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trivias WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete trivia: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTriviaNotFound
	}
	return nil
}
