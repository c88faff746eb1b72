package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// Catalog is an in-memory question store for dev mode and tests.
type Catalog struct {
	mu           sync.RWMutex
	questions    map[int64]domain.Question
	options      map[int64]domain.Option
	nextQuestion int64
	nextOption   int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		questions: make(map[int64]domain.Question),
		options:   make(map[int64]domain.Option),
	}
}

func (c *Catalog) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	question, ok := c.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

func (c *Catalog) GetOption(_ context.Context, id int64) (domain.Option, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	option, ok := c.options[id]
	if !ok {
		return domain.Option{}, domain.ErrOptionNotFound
	}
	return option, nil
}

func (c *Catalog) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextQuestion++
	q.ID = c.nextQuestion
	for i := range q.Options {
		c.nextOption++
		q.Options[i].ID = c.nextOption
		q.Options[i].QuestionID = q.ID
		c.options[q.Options[i].ID] = q.Options[i]
	}
	c.questions[q.ID] = q
	return q, nil
}

func (c *Catalog) ListQuestions(_ context.Context) ([]domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	questions := make([]domain.Question, 0, len(c.questions))
	for _, q := range c.questions {
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

// DeleteQuestion removes a question and its options (options are owned
// exclusively by their question).
func (c *Catalog) DeleteQuestion(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	question, ok := c.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	for _, opt := range question.Options {
		delete(c.options, opt.ID)
	}
	delete(c.questions, id)
	return nil
}
