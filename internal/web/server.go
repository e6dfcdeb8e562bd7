package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/justinas/alice"
	"github.com/rs/zerolog/log"

	"github.com/conorfennell/wordcards/internal/auth"
	"github.com/conorfennell/wordcards/internal/deck"
	"github.com/conorfennell/wordcards/internal/domain"
	"github.com/conorfennell/wordcards/internal/gitsource"
	"github.com/conorfennell/wordcards/internal/srs"
	"github.com/conorfennell/wordcards/internal/storage"
	"github.com/conorfennell/wordcards/internal/sync"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server holds the dependencies for the HTTP server.
type Server struct {
	store    *storage.DB
	deck     *deck.Service
	syncer   *sync.Syncer
	router   *http.ServeMux
	validate *validator.Validate
}

// NewServer creates and configures a new server.
func NewServer(store *storage.DB, d *deck.Service, syncer *sync.Syncer) *Server {
	s := &Server{
		store:    store,
		deck:     d,
		syncer:   syncer,
		router:   http.NewServeMux(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.routes()
	return s
}

// Handler returns the server wrapped in its request logging.
func (s *Server) Handler() http.Handler {
	return alice.New(AccessLog).Then(s)
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server. Everything but the health
// check needs a user.
func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth())

	user := alice.New(requireUser)
	handle := func(pattern string, h http.HandlerFunc) {
		s.router.Handle(pattern, user.Then(h))
	}

	handle("POST /cards", s.handleCreateCard())
	handle("GET /cards", s.handleListCards())
	handle("GET /cards/due", s.handleDueCards())
	handle("GET /cards/{id}", s.handleGetCard())
	handle("DELETE /cards/{id}", s.handleDeleteCard())
	handle("POST /cards/{id}/review", s.handleReviewCard())
	handle("GET /cards/{id}/reviews", s.handleReviewLogs())
	handle("POST /sessions/summary", s.handleSessionSummary())

	handle("GET /sources", s.handleListSources())
	handle("POST /sources", s.handleCreateSource())
	handle("DELETE /sources/{id}", s.handleDeleteSource())
	handle("POST /sync", s.handlePostSync())
}

func requireUser(next http.Handler) http.Handler {
	return auth.Require(next, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "missing "+auth.Header+" header")
	})
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("health check failed")
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type createCardRequest struct {
	Word           string `json:"word" validate:"required,max=100"`
	TargetLanguage string `json:"targetLanguage" validate:"required,max=35"`
}

// handleCreateCard generates and stores a card for a new word.
func (s *Server) handleCreateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCardRequest
		if !s.decode(w, r, &req) {
			return
		}
		card, err := s.deck.AddWord(r.Context(), userID(r), req.Word, req.TargetLanguage, nil)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, card)
	}
}

func (s *Server) handleListCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := s.deck.Cards(r.Context(), userID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

// handleDueCards lists the cards due for review, the longest overdue first.
func (s *Server) handleDueCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := s.deck.DueCards(r.Context(), userID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.deck.Card(r.Context(), userID(r), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func (s *Server) handleDeleteCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deck.DeleteCard(r.Context(), userID(r), r.PathValue("id")); err != nil {
			s.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type reviewRequest struct {
	Quality json.RawMessage `json:"quality" validate:"required"`
}

// handleReviewCard grades a card and returns it with its new schedule.
func (s *Server) handleReviewCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if !s.decode(w, r, &req) {
			return
		}
		quality, err := parseQuality(req.Quality)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		card, err := s.deck.Review(r.Context(), userID(r), r.PathValue("id"), quality)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

// parseQuality accepts a grade as a JSON number or a string holding the
// number or the grade's name.
func parseQuality(raw json.RawMessage) (srs.Quality, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return srs.ParseQuality(name)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, srs.ErrInvalidQuality
	}
	return srs.ParseQuality(n.String())
}

func (s *Server) handleReviewLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := s.deck.ReviewLogs(r.Context(), userID(r), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

type sessionSummaryRequest struct {
	WordsStruggledWith []string `json:"wordsStruggledWith" validate:"dive,required"`
	TotalWordsReviewed int      `json:"totalWordsReviewed" validate:"gte=0"`
}

// handleSessionSummary returns AI feedback on a finished review session.
func (s *Server) handleSessionSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionSummaryRequest
		if !s.decode(w, r, &req) {
			return
		}
		summary, err := s.deck.Summarize(r.Context(), req.WordsStruggledWith, req.TotalWordsReviewed)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	}
}

func (s *Server) handleListSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := s.store.GetSources(r.Context(), userID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sources)
	}
}

type createSourceRequest struct {
	Path           string `json:"path" validate:"required"`
	TargetLanguage string `json:"targetLanguage" validate:"required,max=35"`
}

// handleCreateSource registers a local directory or git repository of word
// lists. Words are imported on the next sync.
func (s *Server) handleCreateSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSourceRequest
		if !s.decode(w, r, &req) {
			return
		}
		src := domain.Source{
			UserID:         userID(r),
			Path:           req.Path,
			Type:           domain.SourceType(req.Path),
			TargetLanguage: req.TargetLanguage,
		}
		if src.Type == domain.SourceGit {
			// Only the shape of the URL matters here, not the real repos dir.
			if _, err := gitsource.LocalPath("repos", src.Path); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		id, err := s.store.InsertSource(r.Context(), src)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		src.ID = id
		log.Info().Str("user", src.UserID).Int64("source", id).Str("type", src.Type).Msg("source added")
		writeJSON(w, http.StatusCreated, src)
	}
}

func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid source ID")
			return
		}
		if err := s.store.DeleteSource(r.Context(), userID(r), id); err != nil {
			s.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handlePostSync syncs the caller's sources and waits for the result.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.syncer.RunUser(r.Context(), userID(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func userID(r *http.Request) string {
	if u := auth.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

// decode reads a JSON body into dst and validates it. It writes a 400 and
// returns false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return "invalid field " + fe.Field() + ": failed " + fe.Tag()
	}
	return err.Error()
}

// fail maps service errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicateCard), errors.Is(err, storage.ErrDuplicateSource):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, srs.ErrInvalidQuality),
		errors.Is(err, deck.ErrEmptyWord),
		errors.Is(err, deck.ErrEmptyLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, deck.ErrGeneration):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("content generation failed")
		writeError(w, http.StatusBadGateway, "content generation failed")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// AccessLog logs one line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
