package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// E2E test that exercises the full visitor journey against a deployed
// stack: chat about a problem, book an inspection, submit the form.
func TestE2E_VisitorJourney(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test")
	}

	baseURL := os.Getenv("TEST_API_URL")
	if baseURL == "" {
		t.Skip("Skipping E2E test: TEST_API_URL not set (requires docker-compose)")
	}

	// Quick health check
	healthResp, err := http.Get(baseURL + "/healthz")
	if err != nil || healthResp.StatusCode != http.StatusOK {
		t.Skip("Skipping E2E test: server not available")
	}
	healthResp.Body.Close()

	// Open a chat session
	resp, err := http.Post(baseURL+"/v1/chat/sessions", "application/json", nil)
	require.NoError(t, err)
	var opened struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opened))
	resp.Body.Close()
	require.NotEmpty(t, opened.SessionID)

	// Describe the problem
	turn := func(text string) string {
		body, _ := json.Marshal(map[string]string{"text": text})
		r, err := http.Post(baseURL+"/v1/chat/sessions/"+opened.SessionID+"/messages", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer r.Body.Close()
		require.Equal(t, http.StatusOK, r.StatusCode)

		var out struct {
			BotText string `json:"botText"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&out))
		return out.BotText
	}

	assert.NotEmpty(t, turn("my terrace leaks when it rains"))
	assert.NotEmpty(t, turn("I want to book an inspection"))
	assert.NotEmpty(t, turn("my number is 9842211100"))

	// Leave details through the inquiry form
	body, _ := json.Marshal(map[string]interface{}{
		"name":    "Priya Raman",
		"phone":   "+91 98422 11100",
		"message": "terrace leaks when it rains, discussed in chat",
	})
	submitResp, err := http.Post(baseURL+"/v1/leads/inquiries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer submitResp.Body.Close()
	assert.Equal(t, http.StatusCreated, submitResp.StatusCode)
}
