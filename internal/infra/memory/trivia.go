package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// TriviaStore is an in-memory trivia store. Question content is resolved
// through the catalog so both stores stay consistent.
type TriviaStore struct {
	catalog *Catalog

	mu        sync.RWMutex
	trivias   map[int64]domain.Trivia
	questions map[int64][]int64 // trivia ID -> ordered question IDs
	nextID    int64
}

func NewTriviaStore(catalog *Catalog) *TriviaStore {
	return &TriviaStore{
		catalog:   catalog,
		trivias:   make(map[int64]domain.Trivia),
		questions: make(map[int64][]int64),
	}
}

func (s *TriviaStore) GetTrivia(_ context.Context, id int64) (domain.Trivia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trivia, ok := s.trivias[id]
	if !ok {
		return domain.Trivia{}, domain.ErrTriviaNotFound
	}
	return trivia, nil
}

func (s *TriviaStore) QuestionsOf(ctx context.Context, triviaID int64) ([]domain.Question, error) {
	s.mu.RLock()
	if _, ok := s.trivias[triviaID]; !ok {
		s.mu.RUnlock()
		return nil, domain.ErrTriviaNotFound
	}
	ids := append([]int64(nil), s.questions[triviaID]...)
	s.mu.RUnlock()

	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		question, err := s.catalog.GetQuestion(ctx, id)
		if err != nil {
			// Question deleted after trivia creation; skip it.
			continue
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (s *TriviaStore) CreateTrivia(_ context.Context, t domain.Trivia, questionIDs []int64) (domain.Trivia, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	s.trivias[t.ID] = t
	s.questions[t.ID] = append([]int64(nil), questionIDs...)
	return t, nil
}

func (s *TriviaStore) ListTrivias(_ context.Context) ([]domain.Trivia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trivias := make([]domain.Trivia, 0, len(s.trivias))
	for _, t := range s.trivias {
		trivias = append(trivias, t)
	}
	sort.Slice(trivias, func(i, j int) bool { return trivias[i].ID < trivias[j].ID })
	return trivias, nil
}

func (s *TriviaStore) DeleteTrivia(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trivias[id]; !ok {
		return domain.ErrTriviaNotFound
	}
	delete(s.trivias, id)
	delete(s.questions, id)
	return nil
}
