package web

import (
	"log/slog"
	"net/http"

	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/jusunglee/romanize/internal/web/handlers"
	"github.com/jusunglee/romanize/internal/web/middleware"
)

// Config collects the router's dependencies. Only Engine and Log are
// required; routes whose dependency is missing answer 503.
type Config struct {
	Engine         *transliteration.Engine
	Repo           db.Repository
	Translator     handlers.Translator
	Queue          handlers.TranslationQueue
	Log            *slog.Logger
	AllowedOrigins []string
	AdminPassword  string
	// RateLimit is the number of POST requests allowed per IP per minute.
	RateLimit int
}

type Router struct {
	cfg Config
}

func NewRouter(cfg Config) *Router {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	return &Router{cfg: cfg}
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	log := r.cfg.Log

	transliterateHandler := handlers.NewTransliterateHandler(r.cfg.Engine, r.cfg.Repo, log)
	translateHandler := handlers.NewTranslateHandler(r.cfg.Translator, r.cfg.Queue, log)
	feedbackHandler := handlers.NewFeedbackHandler(r.cfg.Repo, log)

	rateLimiter := middleware.NewRateLimiter(r.cfg.RateLimit, 60)

	read := func(h http.HandlerFunc, cache string) http.Handler {
		return middleware.Chain(h,
			middleware.RequestID(),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.CacheControl(cache),
		)
	}
	write := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.RequestID(),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.RateLimit(rateLimiter),
		)
	}

	mux.Handle("GET /api/v1/transliterate", read(transliterateHandler.Info, "public, max-age=60"))
	mux.Handle("POST /api/v1/transliterate", write(transliterateHandler.Create))
	mux.Handle("POST /api/v1/transliterate/batch", write(transliterateHandler.Batch))
	mux.Handle("GET /api/v1/scripts", read(transliterateHandler.Scripts, "public, max-age=300"))
	mux.Handle("GET /api/v1/history", read(transliterateHandler.History, "no-store"))

	mux.Handle("POST /api/v1/translate", write(translateHandler.Create))
	mux.Handle("POST /api/v1/translate/jobs", write(translateHandler.Enqueue))

	mux.Handle("POST /api/v1/feedback", write(feedbackHandler.Create))
	mux.Handle("GET /api/v1/admin/feedback",
		middleware.Chain(
			http.HandlerFunc(feedbackHandler.List),
			middleware.RequestID(),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(log),
			middleware.BasicAuth(r.cfg.AdminPassword),
		),
	)

	return middleware.CORS(r.cfg.AllowedOrigins)(mux)
}
