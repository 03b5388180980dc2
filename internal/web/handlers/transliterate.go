package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/metrics"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// MaxBatchItems caps a single batch request.
const MaxBatchItems = 100

type TransliterateHandler struct {
	engine *transliteration.Engine
	repo   db.Repository
	log    *slog.Logger
}

// NewTransliterateHandler serves the engine over HTTP. repo may be nil, in
// which case history is not recorded and the history route returns 503.
func NewTransliterateHandler(engine *transliteration.Engine, repo db.Repository, log *slog.Logger) *TransliterateHandler {
	return &TransliterateHandler{engine: engine, repo: repo, log: log}
}

type transliterateRequest struct {
	Text   *string `json:"text"`
	Script string  `json:"script"`
}

type batchRequest struct {
	Items []transliterateRequest `json:"items"`
}

type scriptResponse struct {
	Script  string   `json:"script"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type historyResponse struct {
	ID             int64  `json:"id"`
	Original       string `json:"original"`
	Transliterated string `json:"transliterated"`
	Script         string `json:"script_used"`
	Status         string `json:"status"`
	Source         string `json:"source"`
	CreatedAt      string `json:"created_at"`
}

// Info answers GET with a short description of the API.
func (h *TransliterateHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Message string   `json:"message"`
		Scripts []string `json:"scripts"`
	}{
		Message: "Transliteration API is running. Use POST to transliterate text.",
		Scripts: h.engine.Scripts(),
	})
}

func (h *TransliterateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transliterateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := validateText(req.Text); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res := h.transliterate(r.Context(), *req.Text, req.Script)
	writeJSON(w, http.StatusOK, res)
}

func (h *TransliterateHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items is required")
		return
	}
	if len(req.Items) > MaxBatchItems {
		writeError(w, http.StatusBadRequest, "too many items")
		return
	}
	for _, item := range req.Items {
		if msg, ok := validateText(item.Text); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	results := make([]transliteration.Result, len(req.Items))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(8)
	for i, item := range req.Items {
		g.Go(func() error {
			results[i] = h.transliterate(ctx, *item.Text, item.Script)
			return nil
		})
	}
	g.Wait()

	writeJSON(w, http.StatusOK, struct {
		Data []transliteration.Result `json:"data"`
	}{Data: results})
}

func (h *TransliterateHandler) Scripts(w http.ResponseWriter, r *http.Request) {
	data := lo.Map(h.engine.Registry().Tables(), func(t *transliteration.Table, _ int) scriptResponse {
		return scriptResponse{Script: t.Script(), Name: t.Name(), Aliases: t.Aliases()}
	})
	writeJSON(w, http.StatusOK, struct {
		Data []scriptResponse `json:"data"`
	}{Data: data})
}

func (h *TransliterateHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	rows, err := h.repo.ListRecentTransliterations(r.Context(), parseLimit(r, 25, 100))
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := lo.Map(rows, func(t db.Transliteration, _ int) historyResponse {
		return historyResponse{
			ID:             t.ID,
			Original:       t.Original,
			Transliterated: t.Transliterated,
			Script:         t.Script,
			Status:         t.Status,
			Source:         t.Source,
			CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		}
	})
	writeJSON(w, http.StatusOK, struct {
		Data []historyResponse `json:"data"`
	}{Data: data})
}

func (h *TransliterateHandler) transliterate(ctx context.Context, text, script string) transliteration.Result {
	res := h.engine.Transliterate(text, script)
	metrics.TransliterationsTotal.WithLabelValues(metrics.ScriptLabel(res.Script, res.Status == transliteration.StatusOK), string(res.Status), "web").Inc()
	metrics.TransliterationInputBytes.Observe(float64(len(text)))

	if h.repo != nil {
		_, err := h.repo.RecordTransliteration(ctx, db.RecordTransliterationParams{
			Original:       res.Original,
			Transliterated: res.Transliterated,
			Script:         res.Script,
			Status:         string(res.Status),
			Source:         "web",
		})
		if err != nil {
			metrics.HistoryWriteErrors.Inc()
			h.log.WarnContext(ctx, "recording transliteration", "error", err)
		}
	}
	return res
}

func validateText(text *string) (string, bool) {
	if text == nil || *text == "" {
		return `Valid "text" string is required`, false
	}
	if err := transliteration.ValidateInput(*text); err != nil {
		return err.Error(), false
	}
	return "", true
}
