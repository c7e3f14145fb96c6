// ABOUTME: HTTP handler issuing temporary streaming credentials
// ABOUTME: Keeps the provider API key server-side; clients only see short-lived tokens

package tokensvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const tokenTTLSeconds = 3600

// Handler exchanges the long-lived provider API key for temporary streaming
// tokens. Mount it wherever recording clients can reach it.
type Handler struct {
	providerURL string
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ http.Handler = (*Handler)(nil)

// New creates a token handler. providerURL is the provider's temporary token
// endpoint; apiKey must be the account's long-lived key.
func New(providerURL, apiKey string, httpClient *http.Client) (*Handler, error) {
	if providerURL == "" {
		return nil, fmt.Errorf("provider URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("provider API key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Handler{
		providerURL: providerURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		logger:      slog.Default().With("component", "tokensvc"),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token, err := h.fetchToken(r)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// fetchToken asks the provider for a short-lived streaming credential.
func (h *Handler) fetchToken(r *http.Request) (string, error) {
	body, err := json.Marshal(map[string]int{"expires_in": tokenTTLSeconds})
	if err != nil {
		return "", fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.providerURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Authorization", h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("provider returned an empty token")
	}
	return payload.Token, nil
}
