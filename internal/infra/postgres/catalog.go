package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// Catalog is the Postgres question store.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	var question domain.Question
	err := c.pool.QueryRow(ctx,
		`SELECT id, text, difficulty FROM questions WHERE id=$1`, id,
	).Scan(&question.ID, &question.Text, &question.Difficulty)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}

	options, err := c.optionsOf(ctx, question.ID)
	if err != nil {
		return domain.Question{}, err
	}
	question.Options = options
	return question, nil
}

func (c *Catalog) GetOption(ctx context.Context, id int64) (domain.Option, error) {
	var option domain.Option
	err := c.pool.QueryRow(ctx,
		`SELECT id, question_id, text, is_correct FROM options WHERE id=$1`, id,
	).Scan(&option.ID, &option.QuestionID, &option.Text, &option.Correct)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Option{}, domain.ErrOptionNotFound
	}
	if err != nil {
		return domain.Option{}, fmt.Errorf("get option: %w", err)
	}
	return option, nil
}

// CreateQuestion inserts the question and its options in one transaction.
func (c *Catalog) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return domain.Question{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO questions (text, difficulty) VALUES ($1, $2) RETURNING id`,
		q.Text, q.Difficulty,
	).Scan(&q.ID); err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	for i := range q.Options {
		q.Options[i].QuestionID = q.ID
		if err := tx.QueryRow(ctx,
			`INSERT INTO options (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`,
			q.ID, q.Options[i].Text, q.Options[i].Correct,
		).Scan(&q.Options[i].ID); err != nil {
			return domain.Question{}, fmt.Errorf("insert option: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Question{}, fmt.Errorf("commit: %w", err)
	}
	return q, nil
}

func (c *Catalog) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, text, difficulty FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(&question.ID, &question.Text, &question.Difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		options, err := c.optionsOf(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = options
	}
	return questions, nil
}

// DeleteQuestion removes a question; its options go with it via cascade.
func (c *Catalog) DeleteQuestion(ctx context.Context, id int64) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (c *Catalog) optionsOf(ctx context.Context, questionID int64) ([]domain.Option, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, question_id, text, is_correct FROM options WHERE question_id=$1 ORDER BY id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var option domain.Option
		if err := rows.Scan(&option.ID, &option.QuestionID, &option.Text, &option.Correct); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		options = append(options, option)
	}
	return options, rows.Err()
}
