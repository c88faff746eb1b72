package domain

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTriviaNotFound indicates the trivia could not be loaded.
	ErrTriviaNotFound = errors.New("trivia not found")
	// ErrQuestionNotFound indicates a question ID is unknown to the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option ID is unknown to the catalog.
	ErrOptionNotFound = errors.New("option not found")
	// ErrParticipationNotFound is returned when a player was not invited to a trivia.
	ErrParticipationNotFound = errors.New("participation not found")
	// ErrAlreadyCompleted guards the one-way completion latch on resubmission.
	ErrAlreadyCompleted = errors.New("trivia already completed")
	// ErrInvalidDifficulty rejects unknown difficulty labels at question creation.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidQuestion rejects questions that break the one-correct-option rule.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidTrivia rejects malformed trivia definitions.
	ErrInvalidTrivia = errors.New("invalid trivia")
	// ErrInvalidUser rejects malformed user records.
	ErrInvalidUser = errors.New("invalid user")
	// ErrDuplicateParticipation guards the unique (player, trivia) pair.
	ErrDuplicateParticipation = errors.New("participation already exists")
)
