package tools

import "fmt"

// CatalogUnavailableError reports that a tool server could not be listed
// during a catalog refresh. The session cannot start without the catalog, so
// callers treat this as fatal.
type CatalogUnavailableError struct {
	Server string
	Err    error
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("tools: catalog unavailable: server %s: %v", e.Server, e.Err)
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

// UnknownToolError reports a model request for a tool that is not in the
// catalog. No server is contacted for unknown tools.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tools: unknown tool %q", e.Name)
}

// ArgumentParseError reports a tool call whose argument payload could not be
// decoded as a JSON object.
type ArgumentParseError struct {
	Raw string
	Err error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("tools: parse arguments %q: %v", e.Raw, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// ToolExecutionError reports a failed tool invocation. Output carries the
// remote error payload verbatim so it can be folded back into the
// conversation.
type ToolExecutionError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolExecutionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("tools: tool %s failed: %s", e.Tool, e.Output)
	}
	return fmt.Sprintf("tools: tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
