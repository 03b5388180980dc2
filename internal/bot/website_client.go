package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebsiteClient forwards feedback to the companion web API.
// If URL is empty, all calls are no-ops (opt-out by default).
type WebsiteClient struct {
	url  string
	http *http.Client
}

func NewWebsiteClient(url string) *WebsiteClient {
	return &WebsiteClient{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebsiteClient) Enabled() bool {
	return w != nil && w.url != ""
}

type feedbackSubmission struct {
	Text           string `json:"text"`
	Script         string `json:"script,omitempty"`
	Transliterated string `json:"transliterated,omitempty"`
	Suggestion     string `json:"suggestion"`
}

func (w *WebsiteClient) SubmitFeedback(ctx context.Context, fb feedbackSubmission) error {
	if !w.Enabled() {
		return nil
	}

	jsonBody, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshaling feedback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url+"/api/v1/feedback", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("submitting feedback: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("submitting feedback: unexpected status %d", resp.StatusCode)
	}
	return nil
}
