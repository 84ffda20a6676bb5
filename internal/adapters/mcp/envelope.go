package mcp

import "encoding/json"

// JSON-RPC 2.0 envelopes for the aggregation service. Every tool fetch is
// one tools/call request against the single /mcp endpoint.

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type payloadKind int

const (
	rawPayload payloadKind = iota
	encodedText
)

// toolPayload is the tagged result of unwrapping a tool call: either the
// result object itself, or a payload nested one level inside a text
// content block.
type toolPayload struct {
	kind payloadKind
	raw  json.RawMessage
	text string
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wrappedResult struct {
	Content []contentBlock `json:"content"`
}

// unwrapToolResult is the single canonical unwrap step for the two shapes
// tool results arrive in. It never fails: a result that is not a content
// wrapper is taken as the payload directly.
func unwrapToolResult(result json.RawMessage) toolPayload {
	var wrapped wrappedResult
	if err := json.Unmarshal(result, &wrapped); err == nil {
		for _, block := range wrapped.Content {
			if block.Type == "text" && block.Text != "" {
				return toolPayload{kind: encodedText, text: block.Text}
			}
		}
	}

	return toolPayload{kind: rawPayload, raw: result}
}

// JSON canonicalizes the payload to a raw JSON document. Text that is not
// itself valid JSON is kept unparsed, re-encoded as a JSON string; the
// ambiguity never becomes an error.
func (p toolPayload) JSON() json.RawMessage {
	switch p.kind {
	case encodedText:
		if json.Valid([]byte(p.text)) {
			return json.RawMessage(p.text)
		}
		encoded, err := json.Marshal(p.text)
		if err != nil {
			return json.RawMessage("null")
		}
		return encoded
	default:
		return p.raw
	}
}
