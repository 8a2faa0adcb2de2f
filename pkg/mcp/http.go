package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sessionHeader = "Mcp-Session-Id"

// HTTPConfig configures a client for a server speaking the streamable HTTP
// transport, such as FastMCP behind http://host:port/mcp.
type HTTPConfig struct {
	// Endpoint is the full URL of the server's MCP endpoint.
	Endpoint string
	// HTTPClient overrides the default client used for requests.
	HTTPClient *http.Client
	// Headers are added to every request, e.g. for authentication.
	Headers map[string]string
	// Options tune the MCP handshake.
	Options Options
}

// NewHTTPClient connects to an MCP server over HTTP and performs the
// initialise handshake.
func NewHTTPClient(ctx context.Context, cfg HTTPConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("mcp: endpoint is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	transport := &httpTransport{
		endpoint: cfg.Endpoint,
		client:   httpClient,
		headers:  cfg.Headers,
		pending:  make(chan []byte, 1),
	}
	return NewClient(ctx, transport, cfg.Options)
}

// httpTransport maps the Transport interface onto request/response HTTP
// exchanges: every Send POSTs one JSON-RPC message and buffers the server's
// reply for the following Receive. The session id assigned by the server
// during initialise is echoed on subsequent requests.
type httpTransport struct {
	endpoint string
	client   *http.Client
	headers  map[string]string

	mu      sync.Mutex
	session string
	pending chan []byte
	closed  bool
}

func (t *httpTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errors.New("mcp: transport is closed")
	}
	session := t.session
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mcp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("mcp: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mcp: server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if id := resp.Header.Get(sessionHeader); id != "" {
		t.mu.Lock()
		t.session = id
		t.mu.Unlock()
	}

	msg, err := decodeHTTPBody(resp)
	if err != nil {
		return err
	}
	if len(msg) == 0 {
		// Accepted notification with no body; nothing to queue.
		return nil
	}

	select {
	case t.pending <- msg:
		return nil
	default:
		return errors.New("mcp: response received with no pending request")
	}
}

func (t *httpTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-t.pending:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *httpTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// decodeHTTPBody extracts a single JSON-RPC message from a response. Servers
// either answer with a plain JSON body or wrap it in an SSE stream.
func decodeHTTPBody(resp *http.Response) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/event-stream" {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("mcp: read response: %w", err)
		}
		return bytes.TrimSpace(body), nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			continue
		}
		if line == "" && data.Len() > 0 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mcp: read event stream: %w", err)
	}
	if data.Len() == 0 {
		return nil, errors.New("mcp: event stream contained no data")
	}
	return []byte(data.String()), nil
}
