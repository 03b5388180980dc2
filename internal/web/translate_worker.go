package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jusunglee/romanize/internal/jobs"
	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/riverqueue/river"
)

// TranslateWorker runs queued translations. The translator caches the result,
// so a later POST /api/v1/translate for the same text is served from cache.
type TranslateWorker struct {
	river.WorkerDefaults[jobs.TranslateTextArgs]
	translator *translation.Translator
	log        *slog.Logger
}

func NewTranslateWorker(translator *translation.Translator, log *slog.Logger) *TranslateWorker {
	return &TranslateWorker{translator: translator, log: log}
}

func (w *TranslateWorker) Work(ctx context.Context, job *river.Job[jobs.TranslateTextArgs]) error {
	t, err := w.translator.Translate(ctx, job.Args.Text, job.Args.Target)
	if errors.Is(err, transliteration.ErrInvalidInput) {
		// Retrying will not make the text valid.
		return river.JobCancel(err)
	}
	if err != nil {
		return fmt.Errorf("translating job %d: %w", job.ID, err)
	}

	w.log.InfoContext(ctx, "translated queued text",
		"job_id", job.ID,
		"target", job.Args.Target,
		"detected_language", t.DetectedLanguage,
		"cached", t.Cached,
	)
	return nil
}
