package tools

import (
	"encoding/json"
	"strings"
)

// ParseArguments decodes the raw argument payload of a model tool call into
// the map form tool servers accept. Empty and null payloads decode to an
// empty map; anything else must be a JSON object.
func ParseArguments(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return nil, &ArgumentParseError{Raw: raw, Err: err}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
