package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jusunglee/romanize/internal/db"
	"github.com/samber/lo"
)

const maxSuggestionLen = 500

type FeedbackHandler struct {
	repo db.Repository
	log  *slog.Logger
}

func NewFeedbackHandler(repo db.Repository, log *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{repo: repo, log: log}
}

type createFeedbackRequest struct {
	Text           string `json:"text"`
	Script         string `json:"script"`
	Transliterated string `json:"transliterated"`
	Suggestion     string `json:"suggestion"`
}

type feedbackResponse struct {
	ID             int64  `json:"id"`
	Text           string `json:"text"`
	Script         string `json:"script"`
	Transliterated string `json:"transliterated"`
	Suggestion     string `json:"suggestion"`
	CreatedAt      string `json:"created_at"`
}

func toFeedbackResponse(f db.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:             f.ID,
		Text:           f.Text,
		Script:         f.Script,
		Transliterated: f.Transliterated,
		Suggestion:     f.Suggestion,
		CreatedAt:      f.CreatedAt.Format(time.RFC3339),
	}
}

func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "feedback is not enabled")
		return
	}

	var req createFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Suggestion = strings.TrimSpace(req.Suggestion)
	if req.Text == "" || req.Suggestion == "" {
		writeError(w, http.StatusBadRequest, "text and suggestion are required")
		return
	}
	if utf8.RuneCountInString(req.Suggestion) > maxSuggestionLen {
		writeError(w, http.StatusBadRequest, "suggestion must be 500 characters or fewer")
		return
	}
	if msg, ok := validateText(&req.Text); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	fb, err := h.repo.CreateFeedback(r.Context(), db.CreateFeedbackParams{
		Text:           req.Text,
		Script:         strings.ToLower(req.Script),
		Transliterated: req.Transliterated,
		Suggestion:     req.Suggestion,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "creating feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "feedback is not enabled")
		return
	}

	rows, err := h.repo.ListFeedback(r.Context(), parseLimit(r, 25, 100))
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Data []feedbackResponse `json:"data"`
	}{Data: lo.Map(rows, func(f db.Feedback, _ int) feedbackResponse { return toFeedbackResponse(f) })})
}
