package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/claudio1988-dev/talatrivia/internal/app"
	"github.com/claudio1988-dev/talatrivia/internal/auth"
	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// Handler exposes the trivia use cases over JSON HTTP.
type Handler struct {
	play    *app.PlayService
	ranking *app.RankingService
	admin   *app.AdminService
	users   app.UserRepository
	tokens  *auth.Issuer
}

func NewHandler(play *app.PlayService, ranking *app.RankingService, admin *app.AdminService, users app.UserRepository, tokens *auth.Issuer) *Handler {
	return &Handler{play: play, ranking: ranking, admin: admin, users: users, tokens: tokens}
}

// Routes wires every endpoint onto a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /auth/token", h.issueToken)

	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("POST /users", h.createUser)

	mux.HandleFunc("GET /questions", h.listQuestions)
	mux.HandleFunc("POST /questions", h.createQuestion)
	mux.HandleFunc("DELETE /questions/{id}", h.deleteQuestion)

	mux.HandleFunc("GET /trivias", h.listTrivias)
	mux.HandleFunc("POST /trivias", h.createTrivia)
	mux.HandleFunc("DELETE /trivias/{id}", h.deleteTrivia)

	mux.HandleFunc("GET /my-trivias", h.requireAuth(h.myTrivias))
	mux.HandleFunc("GET /trivias/{id}/play", h.requireAuth(h.playTrivia))
	mux.HandleFunc("POST /trivias/{id}/submit", h.requireAuth(h.submitTrivia))

	mux.HandleFunc("GET /trivias/{id}/ranking", h.getRanking)
	mux.HandleFunc("GET /trivias/{id}/ranking/ws", h.rankingWS)
	return mux
}

// requireAuth resolves the bearer token into a player identity.
func (h *Handler) requireAuth(next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := h.tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, userID)
	}
}

type tokenRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	token, err := h.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user_id":      user.ID,
		"role":         user.Role,
	})
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.admin.CreateUser(r.Context(), req.Name, req.Email, domain.Role(req.Role))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type createQuestionRequest struct {
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
	Options    []struct {
		Text    string `json:"text"`
		Correct bool   `json:"is_correct"`
	} `json:"options"`
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	options := make([]domain.Option, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, domain.Option{Text: opt.Text, Correct: opt.Correct})
	}
	question, err := h.admin.CreateQuestion(r.Context(), req.Text, difficulty, options)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.admin.ListQuestions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.admin.DeleteQuestion(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted"})
}

type createTriviaRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	QuestionIDs []int64 `json:"question_ids"`
	UserIDs     []int64 `json:"user_ids"`
}

func (h *Handler) createTrivia(w http.ResponseWriter, r *http.Request) {
	var req createTriviaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	trivia, err := h.admin.CreateTrivia(r.Context(), req.Name, req.Description, req.QuestionIDs, req.UserIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trivia)
}

func (h *Handler) listTrivias(w http.ResponseWriter, r *http.Request) {
	trivias, err := h.admin.ListTrivias(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trivias)
}

func (h *Handler) deleteTrivia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.admin.DeleteTrivia(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Trivia deleted"})
}

func (h *Handler) myTrivias(w http.ResponseWriter, r *http.Request, userID int64) {
	statuses, err := h.play.MyTrivias(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) playTrivia(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	sheet, err := h.play.Play(r.Context(), userID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if sheet.Completed {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "You have already completed this trivia",
			"score":   sheet.Score,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trivia":    sheet.Trivia,
		"questions": sheet.Questions,
	})
}

type submitRequest struct {
	Answers []struct {
		QuestionID *int64 `json:"question_id"`
		OptionID   *int64 `json:"option_id"`
	} `json:"answers"`
}

func (h *Handler) submitTrivia(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	answers := make([]domain.AnswerSubmission, 0, len(req.Answers))
	for _, ans := range req.Answers {
		if ans.QuestionID == nil || ans.OptionID == nil {
			writeError(w, http.StatusBadRequest, "answer missing question_id or option_id")
			return
		}
		answers = append(answers, domain.AnswerSubmission{QuestionID: *ans.QuestionID, OptionID: *ans.OptionID})
	}
	score, err := h.play.Submit(r.Context(), userID, id, answers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Trivia completed",
		"score":   score,
	})
}

func (h *Handler) getRanking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ranking, err := h.ranking.Rank(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entries := ranking.Entries
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses: not-found
// conditions to 404, the completion latch to 409, validation to 400.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "Already completed")
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTriviaNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrParticipationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidTrivia),
		errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, domain.ErrDuplicateParticipation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
