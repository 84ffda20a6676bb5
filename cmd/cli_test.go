package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeAggregator speaks just enough JSON-RPC to drive the CLI end to end.
type fakeAggregator struct {
	mu             sync.Mutex
	confirmLogins  bool
	lastAuthHeader string
	lastSessionID  string
}

func (f *fakeAggregator) handler(t *testing.T) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			ID     string `json:"id"`
			Method string `json:"method"`
			Params struct {
				Name string `json:"name"`
			} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "tools/call", request.Method)

		sessionID := r.Header.Get("Mcp-Session-Id")

		f.mu.Lock()
		f.lastAuthHeader = r.Header.Get("Authorization")
		f.lastSessionID = sessionID
		confirm := f.confirmLogins
		f.mu.Unlock()

		var payload string
		switch request.Params.Name {
		case "initiate_login":
			payload = `{"status": "login_required", "login_url": "https://aggregator.test/login?sessionId=` + sessionID + `"}`
		case "check_login_status":
			if confirm {
				payload = `{"authenticated": true, "token": "tok-1", "expires_in": 1800}`
			} else {
				payload = `{"authenticated": false}`
			}
		case "fetch_net_worth":
			payload = `{"total_value": {"units": "2500000", "nanos": 0}, "asset_values": [{"attribute_name": "SAVINGS_ACCOUNTS", "value": {"units": "2500000", "nanos": 0}}]}`
		case "fetch_credit_report":
			payload = `{"score": "746", "bureau": "CIBIL"}`
		case "fetch_epf_details":
			payload = `{"balance": {"units": "1200000", "nanos": 0}}`
		case "fetch_bank_transactions":
			payload = `{"sources": [{"source": "HDFC-1", "transactions": [{"date": "2025-05-02", "description": "Salary", "type": "CREDIT", "amount": {"units": "90000", "nanos": 0}}]}]}`
		case "fetch_mf_transactions", "fetch_stock_transactions":
			payload = `{}`
		default:
			t.Errorf("unexpected tool call %q", request.Params.Name)
			payload = `{}`
		}

		text, err := json.Marshal(payload)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc": "2.0", "id": "` + request.ID + `", "result": {"content": [{"type": "text", "text": ` + string(text) + `}]}}`))
	}
}

func startFakeAggregator(t *testing.T) *fakeAggregator {
	t.Helper()

	fake := &fakeAggregator{confirmLogins: true}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	t.Setenv("NW_MCP_ENDPOINT", server.URL)

	return fake
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestStatusWithoutSessionSuggestsLogin(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No session. Run 'nw login' to authenticate.")
}

func TestLoginStatusFetchLogoutRoundTrip(t *testing.T) {
	home := t.TempDir()
	fake := startFakeAggregator(t)

	stdout, _, err := executeCLI(t, home, "login")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Open this URL in your browser to authenticate:")
	assert.Contains(t, stdout, "https://aggregator.test/login?sessionId=")
	assert.Contains(t, stdout, "Authenticated. Session valid for")

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Authenticated. Session valid for")

	stdout, _, err = executeCLI(t, home, "fetch")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Financial Snapshot")
	assert.Contains(t, stdout, "₹25.00L")
	assert.Contains(t, stdout, "746")
	assert.Contains(t, stdout, "Salary")

	fake.mu.Lock()
	assert.Equal(t, "Bearer tok-1", fake.lastAuthHeader)
	assert.NotEmpty(t, fake.lastSessionID)
	fake.mu.Unlock()

	stdout, _, err = executeCLI(t, home, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out.")

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No session.")
}

func TestFetchJSONOutputIsValid(t *testing.T) {
	home := t.TempDir()
	startFakeAggregator(t)

	_, _, err := executeCLI(t, home, "login")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "fetch", "--json")
	require.NoError(t, err)

	// Spinner frames precede the payload; the JSON document is the last line.
	start := bytes.IndexByte([]byte(stdout), '{')
	require.GreaterOrEqual(t, start, 0)
	assert.True(t, json.Valid([]byte(stdout[start:])))
	assert.Contains(t, stdout, "\"States\"")
}

func TestFetchWithoutSessionFailsWithHint(t *testing.T) {
	home := t.TempDir()
	startFakeAggregator(t)

	_, _, err := executeCLI(t, home, "fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated, run 'nw login' first")
}
