// ABOUTME: Tests for the temporary token handler
// ABOUTME: Verifies proxying, method restrictions and upstream failure mapping

package tokensvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_IssuesToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]int
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"token": "short-lived"})
	}))
	t.Cleanup(provider.Close)

	handler, err := New(provider.URL, "secret-key", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/token", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "short-lived", resp["token"])

	// The provider key never reaches the client, only the provider
	assert.Equal(t, "secret-key", gotAuth)
	assert.Equal(t, 3600, gotBody["expires_in"])
	assert.NotContains(t, rec.Body.String(), "secret-key")
}

func TestHandler_RejectsNonPOST(t *testing.T) {
	handler, err := New("http://provider.invalid/token", "key", nil)
	require.NoError(t, err)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, "/token", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestHandler_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"provider error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty token", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"token": ""})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := httptest.NewServer(tc.handler)
			t.Cleanup(provider.Close)

			handler, err := New(provider.URL, "key", nil)
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/token", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.True(t, strings.Contains(rec.Body.String(), "failed to generate token"))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "key", nil)
	assert.Error(t, err)

	_, err = New("http://provider.invalid/token", "", nil)
	assert.Error(t, err)
}
