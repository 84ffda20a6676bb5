package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnwrapToolResultDirectObject(t *testing.T) {
	t.Parallel()

	payload := unwrapToolResult(json.RawMessage(`{"status": "ok"}`))
	assert.JSONEq(t, `{"status": "ok"}`, string(payload.JSON()))
}

func TestUnwrapToolResultTextNestedJSON(t *testing.T) {
	t.Parallel()

	result := json.RawMessage(`{"content": [{"type": "text", "text": "{\"status\": \"ok\"}"}]}`)
	payload := unwrapToolResult(result)
	assert.JSONEq(t, `{"status": "ok"}`, string(payload.JSON()))
}

func TestUnwrapToolResultTextThatIsNotJSONStaysUnparsed(t *testing.T) {
	t.Parallel()

	result := json.RawMessage(`{"content": [{"type": "text", "text": "plain words"}]}`)
	payload := unwrapToolResult(result)
	assert.Equal(t, `"plain words"`, string(payload.JSON()))
}

func TestUnwrapToolResultSkipsNonTextBlocks(t *testing.T) {
	t.Parallel()

	result := json.RawMessage(`{"content": [{"type": "image", "text": ""}, {"type": "text", "text": "{\"a\": 1}"}]}`)
	payload := unwrapToolResult(result)
	assert.JSONEq(t, `{"a": 1}`, string(payload.JSON()))
}

func TestUnwrapToolResultEmptyContentFallsBackToRaw(t *testing.T) {
	t.Parallel()

	result := json.RawMessage(`{"content": []}`)
	payload := unwrapToolResult(result)
	assert.JSONEq(t, `{"content": []}`, string(payload.JSON()))
}
