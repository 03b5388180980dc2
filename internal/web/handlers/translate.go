package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
)

// Translator is the part of translation.Translator the handler uses.
type Translator interface {
	Translate(ctx context.Context, text, target string) (translation.Translation, error)
}

// TranslationQueue defers a translation to a background worker.
type TranslationQueue interface {
	EnqueueTranslation(ctx context.Context, text, target string) (int64, error)
}

type TranslateHandler struct {
	translator Translator
	queue      TranslationQueue
	log        *slog.Logger
}

// NewTranslateHandler builds the translate routes. Either dependency may be
// nil; the matching route then answers 503.
func NewTranslateHandler(translator Translator, queue TranslationQueue, log *slog.Logger) *TranslateHandler {
	return &TranslateHandler{translator: translator, queue: queue, log: log}
}

type translateRequest struct {
	Text   *string `json:"text"`
	Target string  `json:"target"`
}

func (h *TranslateHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.translator == nil {
		writeError(w, http.StatusServiceUnavailable, "translation is not configured")
		return
	}

	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := validateText(req.Text); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.translator.Translate(r.Context(), *req.Text, req.Target)
	if errors.Is(err, transliteration.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "translating", "error", err)
		writeError(w, http.StatusBadGateway, "Translation failed")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Enqueue accepts a translation for background processing. The result lands
// in the translation cache.
func (h *TranslateHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "background translation requires PostgreSQL")
		return
	}

	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := validateText(req.Text); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	target := strings.ToLower(strings.TrimSpace(req.Target))
	if target == "" {
		target = translation.DefaultTarget
	}

	id, err := h.queue.EnqueueTranslation(r.Context(), *req.Text, target)
	if err != nil {
		h.log.ErrorContext(r.Context(), "enqueueing translation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusAccepted, struct {
		JobID  int64  `json:"job_id"`
		Target string `json:"target"`
	}{JobID: id, Target: target})
}
