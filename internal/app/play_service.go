package app

import (
	"context"
	"errors"
	"time"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// CompletionNotifier is told when a participation finishes, so downstream
// views (ranking caches, live feeds) can refresh.
type CompletionNotifier interface {
	ParticipationCompleted(ctx context.Context, triviaID int64)
}

// PlayService orchestrates the participation lifecycle: open an attempt,
// serve the sanitized question set, score a submitted batch, and latch
// completion exactly once.
type PlayService struct {
	catalog  CatalogRepository
	trivias  TriviaRepository
	ledger   ParticipationLedger
	notifier CompletionNotifier
	now      func() time.Time
}

func NewPlayService(catalog CatalogRepository, trivias TriviaRepository, ledger ParticipationLedger) *PlayService {
	return &PlayService{
		catalog: catalog,
		trivias: trivias,
		ledger:  ledger,
		now:     time.Now,
	}
}

// SetNotifier wires an optional completion listener.
func (s *PlayService) SetNotifier(n CompletionNotifier) { s.notifier = n }

// SetClock is test-only for deterministic timestamps.
func (s *PlayService) SetClock(now func() time.Time) { s.now = now }

// Play opens (or peeks at) a player's attempt. Players who were not invited
// get domain.ErrParticipationNotFound. A completed attempt reports the stored
// score with no questions and no mutation. Otherwise the trivia's questions
// are served with the answer key stripped.
func (s *PlayService) Play(ctx context.Context, userID, triviaID int64) (domain.PlaySheet, error) {
	participation, err := s.ledger.Find(ctx, userID, triviaID)
	if err != nil {
		return domain.PlaySheet{}, err
	}
	trivia, err := s.trivias.GetTrivia(ctx, triviaID)
	if err != nil {
		return domain.PlaySheet{}, err
	}

	if participation.Completed {
		return domain.PlaySheet{Trivia: trivia, Completed: true, Score: participation.Score}, nil
	}

	questions, err := s.trivias.QuestionsOf(ctx, triviaID)
	if err != nil {
		return domain.PlaySheet{}, err
	}
	sanitized := make([]domain.PlayQuestion, 0, len(questions))
	for _, q := range questions {
		sanitized = append(sanitized, domain.SanitizedQuestion(q))
	}
	return domain.PlaySheet{Trivia: trivia, Questions: sanitized}, nil
}

// Submit scores a batch of answers and completes the attempt.
//
// Per-pair policy: a pair referencing an unknown question or option, or a
// question not bound to this trivia, is skipped (no points, no record) without
// failing the batch. A pair whose option belongs to a different question is
// recorded as incorrect. The final score covers exactly the submitted pairs;
// answering every question is not required.
//
// The completion latch itself lives in the ledger: Complete either commits
// the score and answer records in one atomic unit or reports
// domain.ErrAlreadyCompleted, so a concurrent double-submit scores once.
func (s *PlayService) Submit(ctx context.Context, userID, triviaID int64, answers []domain.AnswerSubmission) (int, error) {
	participation, err := s.ledger.Find(ctx, userID, triviaID)
	if err != nil {
		return 0, err
	}
	if participation.Completed {
		return participation.Score, domain.ErrAlreadyCompleted
	}

	questions, err := s.trivias.QuestionsOf(ctx, triviaID)
	if err != nil {
		return 0, err
	}
	member := make(map[int64]bool, len(questions))
	for _, q := range questions {
		member[q.ID] = true
	}

	total := 0
	records := make([]domain.Answer, 0, len(answers))
	for _, ans := range answers {
		if !member[ans.QuestionID] {
			continue
		}
		question, err := s.catalog.GetQuestion(ctx, ans.QuestionID)
		if errors.Is(err, domain.ErrQuestionNotFound) {
			continue
		} else if err != nil {
			return 0, err
		}
		option, err := s.catalog.GetOption(ctx, ans.OptionID)
		if errors.Is(err, domain.ErrOptionNotFound) {
			continue
		} else if err != nil {
			return 0, err
		}

		// The option must carry the correct flag and belong to the question
		// being answered; an option smuggled in from another question never
		// scores.
		correct := option.Correct && option.QuestionID == question.ID
		points := domain.Score(question.Difficulty, correct)
		total += points
		records = append(records, domain.Answer{
			ParticipationID:  participation.ID,
			QuestionID:       question.ID,
			SelectedOptionID: option.ID,
			Correct:          correct,
			PointsAwarded:    points,
		})
	}

	if err := s.ledger.Complete(ctx, participation.ID, total, s.now(), records); err != nil {
		return 0, err
	}
	if s.notifier != nil {
		s.notifier.ParticipationCompleted(ctx, triviaID)
	}
	return total, nil
}

// MyTrivias lists every attempt of a player with its trivia and status.
func (s *PlayService) MyTrivias(ctx context.Context, userID int64) ([]domain.ParticipationStatus, error) {
	participations, err := s.ledger.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	statuses := make([]domain.ParticipationStatus, 0, len(participations))
	for _, p := range participations {
		trivia, err := s.trivias.GetTrivia(ctx, p.TriviaID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, domain.ParticipationStatus{
			Trivia:    trivia,
			Score:     p.Score,
			Completed: p.Completed,
		})
	}
	return statuses, nil
}
