// ABOUTME: Temporary-token client for the streaming transcription service
// ABOUTME: Tokens come from the token service, an external collaborator

package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrAuth is returned when a streaming credential cannot be obtained. It
// always surfaces before any transport connection is attempted.
var ErrAuth = errors.New("authentication failed")

// FetchToken requests a temporary streaming credential from the token
// service. Any failure (missing endpoint, non-200, malformed body, empty
// token) maps to ErrAuth.
func FetchToken(ctx context.Context, client *http.Client, endpoint string) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("%w: token endpoint not configured", ErrAuth)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building token request: %v", ErrAuth, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: requesting token: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token service returned status %d", ErrAuth, resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %v", ErrAuth, err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("%w: token service returned an empty token", ErrAuth)
	}

	return body.Token, nil
}
