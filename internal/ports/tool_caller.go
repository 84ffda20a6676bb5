package ports

import (
	"context"
	"encoding/json"
)

// ToolCaller issues one JSON-RPC tool call against the aggregation service
// and returns the canonically unwrapped result payload. Implementations
// must be safe for concurrent use; the orchestrator fans out over one
// shared caller.
//
//go:generate mockgen -package=mocks -destination=mocks/tool_caller.go -source=tool_caller.go ToolCaller
type ToolCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (json.RawMessage, error)
}
