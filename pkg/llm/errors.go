package llm

import "fmt"

// GatewayError wraps a provider failure. Transient marks failures that a
// retry may clear, such as rate limits, 5xx responses and network timeouts.
type GatewayError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *GatewayError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("llm: %s %s error: %v", e.Provider, kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// InvalidResponseError reports a provider response that decoded successfully
// but violates the Completion contract, for example a tool_calls finish with
// an empty call list.
type InvalidResponseError struct {
	Provider string
	Reason   string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("llm: invalid %s response: %s", e.Provider, e.Reason)
}
