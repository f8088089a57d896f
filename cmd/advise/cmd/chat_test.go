package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messagesAPI answers the Messages endpoint with "reply N" and records how
// many messages each request carried.
type messagesAPI struct {
	mu    sync.Mutex
	sizes []int
}

func (m *messagesAPI) serve(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []json.RawMessage `json:"messages"`
		}
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &req))

		m.mu.Lock()
		m.sizes = append(m.sizes, len(req.Messages))
		n := len(m.sizes)
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"msg_%d","type":"message","role":"assistant","model":"claude-test",`+
			`"content":[{"type":"text","text":"reply %d"}],"stop_reason":"end_turn","stop_sequence":null,`+
			`"usage":{"input_tokens":3,"output_tokens":2}}`, n, n)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestChatCommand_ResetClearsHistory(t *testing.T) {
	cfg, _ := writeConfig(t)
	api := &messagesAPI{}
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ADVISOR_BASE_URL", api.serve(t))

	out, err := run(t, "hi\nhow is btc?\n/reset\nagain\n", "--config", cfg, "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "reply 1")
	assert.Contains(t, out, "reply 2")
	assert.Contains(t, out, "conversation cleared (2 turns)")
	assert.Contains(t, out, "reply 3")

	// The second request carries the first exchange; after /reset history starts over.
	assert.Equal(t, []int{1, 3, 1}, api.sizes)
}
