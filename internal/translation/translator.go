package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/llm"
	"github.com/jusunglee/romanize/internal/metrics"
	"github.com/jusunglee/romanize/internal/transliteration"
)

// DefaultTarget is the language translated into when none is given.
const DefaultTarget = "en"

// Translator produces meaning translations through an LLM, with a romanized
// rendering from the local engine alongside. Results are cached per
// (text, target) when a repository is configured.
type Translator struct {
	llm      llm.Client
	repo     db.Repository
	engine   *transliteration.Engine
	provider string
	model    string
	log      *slog.Logger
}

type Translation struct {
	Original         string `json:"original"`
	Translated       string `json:"translated"`
	Transliterated   string `json:"transliterated"`
	DetectedLanguage string `json:"detected_language"`
	Cached           bool   `json:"cached"`
}

// NewTranslator wires an LLM client to the engine. repo may be nil, in which
// case nothing is cached.
func NewTranslator(client llm.Client, repo db.Repository, engine *transliteration.Engine, provider, model string, log *slog.Logger) *Translator {
	if engine == nil {
		engine = transliteration.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Translator{llm: client, repo: repo, engine: engine, provider: provider, model: model, log: log}
}

const systemPrompt = `You translate short texts into a target language.

Detect the source language and translate the meaning of the text. Keep names as they are.

Respond ONLY with a JSON object, no other text. Example:
{"translated": "Hello, world", "detected_language": "ar"}

detected_language must be an ISO 639-1 code.`

type llmResponse struct {
	Translated       string `json:"translated"`
	DetectedLanguage string `json:"detected_language"`
}

// Translate returns the translation of text into target (DefaultTarget when
// empty).
func (t *Translator) Translate(ctx context.Context, text, target string) (Translation, error) {
	if strings.TrimSpace(text) == "" {
		return Translation{}, fmt.Errorf("%w: text is required", transliteration.ErrInvalidInput)
	}
	if err := transliteration.ValidateInput(text); err != nil {
		return Translation{}, err
	}
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		target = DefaultTarget
	}

	out := Translation{
		Original:       text,
		Transliterated: t.engine.Transliterate(text, "").Transliterated,
	}

	if t.repo != nil {
		cached, err := t.repo.GetCachedTranslation(ctx, db.GetCachedTranslationParams{SourceText: text, TargetLanguage: target})
		switch {
		case err == nil:
			metrics.TranslationsTotal.WithLabelValues("cached").Inc()
			out.Translated = cached.Translated
			out.DetectedLanguage = cached.DetectedLanguage
			out.Cached = true
			return out, nil
		case !db.IsNoRows(err):
			t.log.WarnContext(ctx, "translation cache lookup failed", "error", err)
		}
	}

	resp, err := t.complete(ctx, text, target)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		return Translation{}, err
	}
	metrics.TranslationsTotal.WithLabelValues("llm").Inc()
	out.Translated = resp.Translated
	out.DetectedLanguage = resp.DetectedLanguage

	if t.repo != nil {
		err := t.repo.CacheTranslation(ctx, db.CacheTranslationParams{
			SourceText:       text,
			TargetLanguage:   target,
			Translated:       resp.Translated,
			DetectedLanguage: resp.DetectedLanguage,
			Provider:         t.provider,
			Model:            t.model,
		})
		if err != nil {
			t.log.WarnContext(ctx, "caching translation failed", "error", err)
		}
	}
	return out, nil
}

func (t *Translator) complete(ctx context.Context, text, target string) (llmResponse, error) {
	prompt := fmt.Sprintf("Target language: %s\nText:\n%s", target, text)

	start := time.Now()
	raw, err := t.llm.Complete(ctx, systemPrompt, prompt)
	metrics.LLMTranslationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return llmResponse{}, fmt.Errorf("translating: %w", err)
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(llm.StripMarkdownCodeBlocks(raw)), &resp); err != nil {
		return llmResponse{}, fmt.Errorf("failed to parse translation response: %w (response: %s)", err, raw)
	}
	if resp.Translated == "" {
		return llmResponse{}, errors.New("translation response has no translated text")
	}
	resp.DetectedLanguage = strings.ToLower(resp.DetectedLanguage)
	return resp, nil
}
