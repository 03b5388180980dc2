package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jusunglee/romanize/internal/db"
	"github.com/jusunglee/romanize/internal/db/sqlite"
	"github.com/jusunglee/romanize/internal/translation"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	calls int
	err   error
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (translation.Translation, error) {
	f.calls++
	if f.err != nil {
		return translation.Translation{}, f.err
	}
	return translation.Translation{Original: text, Translated: "hello (" + target + ")", DetectedLanguage: "ar"}, nil
}

type fakeQueue struct {
	text, target string
}

func (q *fakeQueue) EnqueueTranslation(_ context.Context, text, target string) (int64, error) {
	q.text, q.target = text, target
	return 42, nil
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, db.Repository) {
	t.Helper()
	if cfg.Engine == nil {
		cfg.Engine = transliteration.Default()
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Repo == nil {
		repo, err := sqlite.New(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		cfg.Repo = repo
	}
	srv := httptest.NewServer(NewRouter(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv, cfg.Repo
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestTransliterateEndpoint(t *testing.T) {
	srv, repo := newTestServer(t, Config{})

	resp, out := postJSON(t, srv.URL+"/api/v1/transliterate", `{"text":"بيت"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "بيت", out["original"])
	assert.Equal(t, "byt", out["transliterated"])
	assert.Equal(t, "arabic", out["script_used"])
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, out = postJSON(t, srv.URL+"/api/v1/transliterate", `{"text":"Faker","script":"auto"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Faker", out["transliterated"])
	assert.Equal(t, "latin", out["script_used"])
	assert.Equal(t, "unsupported_script", out["status"])

	recent, err := repo.ListRecentTransliterations(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestTransliterateEndpointRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	for _, body := range []string{`{}`, `{"text":""}`, `{"text":42}`, `not json`} {
		resp, out := postJSON(t, srv.URL+"/api/v1/transliterate", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.NotEmpty(t, out["error"], body)
	}

	big := strings.Repeat("a", transliteration.MaxInputBytes+1)
	resp, _ := postJSON(t, srv.URL+"/api/v1/transliterate", `{"text":"`+big+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransliterateInfo(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/api/v1/transliterate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Message string   `json:"message"`
		Scripts []string `json:"scripts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Message, "POST")
	assert.Equal(t, transliteration.Default().Scripts(), out.Scripts)
}

func TestBatchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/v1/transliterate/batch", "application/json", strings.NewReader(
		`{"items":[{"text":"नमस्ते"},{"text":"김치","script":"ko"},{"text":"x","script":"klingon"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []transliteration.Result `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 3)
	assert.Equal(t, "namaste", out.Data[0].Transliterated)
	assert.Equal(t, "gimchi", out.Data[1].Transliterated)
	assert.Equal(t, "hangul", out.Data[1].Script)
	assert.Equal(t, transliteration.StatusUnsupportedScript, out.Data[2].Status)

	items := strings.TrimSuffix(strings.Repeat(`{"text":"a"},`, 101), ",")
	resp2, _ := postJSON(t, srv.URL+"/api/v1/transliterate/batch", `{"items":[`+items+`]}`)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, _ := postJSON(t, srv.URL+"/api/v1/transliterate/batch", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestScriptsAndHistory(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	postJSON(t, srv.URL+"/api/v1/transliterate", `{"text":"你好"}`)

	resp, err := http.Get(srv.URL + "/api/v1/scripts")
	require.NoError(t, err)
	var scripts struct {
		Data []struct {
			Script  string   `json:"script"`
			Name    string   `json:"name"`
			Aliases []string `json:"aliases"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scripts))
	resp.Body.Close()
	require.Len(t, scripts.Data, len(transliteration.Default().Scripts()))
	assert.Equal(t, "arabic", scripts.Data[0].Script)
	assert.Contains(t, scripts.Data[0].Aliases, "ar")

	resp, err = http.Get(srv.URL + "/api/v1/history?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	var history struct {
		Data []struct {
			Original string `json:"original"`
			Script   string `json:"script_used"`
			Source   string `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history.Data, 1)
	assert.Equal(t, "你好", history.Data[0].Original)
	assert.Equal(t, "han", history.Data[0].Script)
	assert.Equal(t, "web", history.Data[0].Source)
}

func TestTranslateEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv, _ := newTestServer(t, Config{})
		resp, _ := postJSON(t, srv.URL+"/api/v1/translate", `{"text":"بيت"}`)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("ok", func(t *testing.T) {
		tr := &fakeTranslator{}
		srv, _ := newTestServer(t, Config{Translator: tr})
		resp, out := postJSON(t, srv.URL+"/api/v1/translate", `{"text":"بيت","target":"fr"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "hello (fr)", out["translated"])
		assert.Equal(t, "ar", out["detected_language"])
		assert.Equal(t, 1, tr.calls)
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv, _ := newTestServer(t, Config{Translator: &fakeTranslator{err: errors.New("boom")}})
		resp, out := postJSON(t, srv.URL+"/api/v1/translate", `{"text":"بيت"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "Translation failed", out["error"])
	})

	t.Run("queued", func(t *testing.T) {
		q := &fakeQueue{}
		srv, _ := newTestServer(t, Config{Queue: q})
		resp, out := postJSON(t, srv.URL+"/api/v1/translate/jobs", `{"text":"بيت","target":" FR "}`)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.EqualValues(t, 42, out["job_id"])
		assert.Equal(t, "fr", q.target)
	})

	t.Run("queue not configured", func(t *testing.T) {
		srv, _ := newTestServer(t, Config{})
		resp, _ := postJSON(t, srv.URL+"/api/v1/translate/jobs", `{"text":"بيت"}`)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestFeedbackEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Config{AdminPassword: "secret"})

	resp, out := postJSON(t, srv.URL+"/api/v1/feedback",
		`{"text":"नमस्ते","script":"Devanagari","transliterated":"namaste","suggestion":"namastē"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "devanagari", out["script"])

	resp, _ = postJSON(t, srv.URL+"/api/v1/feedback", `{"text":"नमस्ते"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/admin/feedback", nil)
	unauth, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer unauth.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, unauth.StatusCode)
	assert.Equal(t, "application/json", unauth.Header.Get("Content-Type"))
	var unauthBody map[string]string
	require.NoError(t, json.NewDecoder(unauth.Body).Decode(&unauthBody))
	assert.Equal(t, "unauthorized", unauthBody["error"])

	req.SetBasicAuth("admin", "secret")
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(authed.Body).Decode(&list))
	assert.Len(t, list.Data, 1)
}

func TestFeedbackSuggestionLengthCountsCharacters(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	body := func(suggestion string) string {
		return `{"text":"नमस्ते","script":"devanagari","transliterated":"namaste","suggestion":"` + suggestion + `"}`
	}

	resp, out := postJSON(t, srv.URL+"/api/v1/feedback", body(strings.Repeat("न", 200)))
	assert.Equal(t, http.StatusCreated, resp.StatusCode, out)

	resp, _ = postJSON(t, srv.URL+"/api/v1/feedback", body(strings.Repeat("न", 500)))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out = postJSON(t, srv.URL+"/api/v1/feedback", body(strings.Repeat("न", 501)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "suggestion must be 500 characters or fewer", out["error"])
}

func TestRateLimitOnWrites(t *testing.T) {
	srv, _ := newTestServer(t, Config{RateLimit: 2})

	for range 2 {
		resp, _ := postJSON(t, srv.URL+"/api/v1/transliterate", `{"text":"بيت"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, out := postJSON(t, srv.URL+"/api/v1/transliterate", `{"text":"بيت"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", out["error"])

	// Reads are not limited.
	get, err := http.Get(srv.URL + "/api/v1/scripts")
	require.NoError(t, err)
	get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/transliterate", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
