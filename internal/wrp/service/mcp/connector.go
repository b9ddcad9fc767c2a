package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/kiosk404/warp/pkg/logger"
	"github.com/kiosk404/warp/pkg/utils/json"
	"github.com/kiosk404/warp/pkg/version"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultShutdownGrace = 2 * time.Second
	maxStderrLine        = 1 << 20
)

// ServerStatus represents the connection state of a tool server.
type ServerStatus int

const (
	ServerStatusDisconnected ServerStatus = iota
	ServerStatusConnecting
	ServerStatusConnected
	ServerStatusError
	ServerStatusClosed
)

func (s ServerStatus) String() string {
	switch s {
	case ServerStatusDisconnected:
		return "Disconnected"
	case ServerStatusConnecting:
		return "Connecting"
	case ServerStatusConnected:
		return "Connected"
	case ServerStatusError:
		return "Error"
	case ServerStatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Options tunes a connection. Zero timeouts disable the bound.
type Options struct {
	HandshakeTimeout time.Duration
	CallTimeout      time.Duration
	ClientName       string

	// ShutdownGrace is how long Close waits for the child to exit after its
	// stdin is closed before killing it. Default: 2s.
	ShutdownGrace time.Duration
}

// ContentBlock is one piece of a tool's output.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolResponse is the raw outcome of a tools/call.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"is_error"`
}

// FirstText returns the first text block, if any.
func (r *ToolResponse) FirstText() (string, bool) {
	if r == nil {
		return "", false
	}
	for _, b := range r.Content {
		if b.Type == "text" {
			return b.Text, true
		}
	}
	return "", false
}

// Connector owns one tool-server child process and its stdio channel.
// CallTool is safe for concurrent use; Close may be called at any time.
type Connector struct {
	name string
	cfg  *ServerConfig
	opts Options

	// proc scopes the child process; cancelling it kills the child.
	proc       context.Context
	procCancel context.CancelFunc

	mu      sync.RWMutex
	cli     *client.Client
	catalog *Catalog
	status  ServerStatus
	info    *mcp.InitializeResult

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Connect spawns the server described by cfg, performs the initialize
// handshake and discovers the tool catalog. On failure every resource is
// released and a *ConnectionError is returned.
func Connect(ctx context.Context, cfg *ServerConfig, opts Options) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		name := ""
		if cfg != nil {
			name = cfg.Name
		}
		return nil, &ConnectionError{Server: name, Stage: StageSpawn, Cause: err}
	}

	c := &Connector{
		name:   cfg.Name,
		cfg:    cfg,
		opts:   opts,
		status: ServerStatusConnecting,
		done:   make(chan struct{}),
	}
	c.proc, c.procCancel = context.WithCancel(context.Background())

	logger.Info("[MCP] starting server %q: %s", c.name, cfg.CommandLine())

	cli, err := client.NewStdioMCPClientWithOptions(cfg.Command, cfg.Env, cfg.Args,
		transport.WithCommandFunc(c.command))
	if err != nil {
		c.procCancel()
		c.setStatus(ServerStatusError)
		return nil, &ConnectionError{Server: c.name, Stage: StageSpawn, Cause: err}
	}
	c.cli = cli
	if stderr, ok := client.GetStderr(cli); ok && stderr != nil {
		go c.drainStderr(stderr)
	}

	hctx, cancel := withOptionalTimeout(ctx, opts.HandshakeTimeout)
	defer cancel()

	if err := c.handshake(hctx); err != nil {
		c.setStatus(ServerStatusError)
		_ = c.Close()
		return nil, err
	}

	c.setStatus(ServerStatusConnected)
	logger.Info("[MCP] server %q connected, %d tools discovered", c.name, c.catalog.Len())
	return c, nil
}

// command builds the child process under the connector's own context so
// Close can kill it.
func (c *Connector) command(_ context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(c.proc, command, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.WaitDelay = c.shutdownGrace()
	return cmd, nil
}

// drainStderr keeps the child's stderr pipe empty so a chatty server never
// blocks on a log write.
func (c *Connector) drainStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
	for sc.Scan() {
		logger.Debug("[MCP] server %q: %s", c.name, sc.Text())
	}
	if sc.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

func (c *Connector) shutdownGrace() time.Duration {
	if c.opts.ShutdownGrace > 0 {
		return c.opts.ShutdownGrace
	}
	return defaultShutdownGrace
}

func (c *Connector) clientName() string {
	if c.opts.ClientName != "" {
		return c.opts.ClientName
	}
	return "wrp"
}

func (c *Connector) handshake(ctx context.Context) error {
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    c.clientName(),
		Version: version.Get().String(),
	}

	info, err := c.cli.Initialize(ctx, initReq)
	if err != nil {
		return &ConnectionError{Server: c.name, Stage: StageInitialize, Cause: err}
	}

	tools, err := c.listTools(ctx)
	if err != nil {
		return &ConnectionError{Server: c.name, Stage: StageListTools, Cause: err}
	}

	catalog, err := NewCatalog(c.name, tools)
	if err != nil {
		return &ConnectionError{Server: c.name, Stage: StageCatalog, Cause: err}
	}

	c.mu.Lock()
	c.info = info
	c.catalog = catalog
	c.mu.Unlock()
	return nil
}

type toolsPage struct {
	Tools      []json.RawMessage `json:"tools"`
	NextCursor mcp.Cursor        `json:"nextCursor,omitempty"`
}

// listTools pages through tools/list on the raw transport. Each tool keeps
// its inputSchema exactly as sent so an empty schema can be told apart from
// a missing one.
func (c *Connector) listTools(ctx context.Context) ([]mcp.Tool, error) {
	var (
		tools  []mcp.Tool
		cursor mcp.Cursor
	)
	for page := 1; ; page++ {
		req := transport.JSONRPCRequest{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      mcp.NewRequestId(fmt.Sprintf("%s-tools-list-%d", c.clientName(), page)),
			Method:  string(mcp.MethodToolsList),
		}
		if cursor != "" {
			req.Params = mcp.PaginatedParams{Cursor: cursor}
		}

		resp, err := c.cli.GetTransport().SendRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("tools/list: %s (code %d)", resp.Error.Message, resp.Error.Code)
		}

		var res toolsPage
		if err := json.Unmarshal(resp.Result, &res); err != nil {
			return nil, fmt.Errorf("decode tools/list result: %w", err)
		}
		for i, raw := range res.Tools {
			t, err := decodeTool(raw)
			if err != nil {
				return nil, fmt.Errorf("decode tool #%d: %w", len(tools)+i, err)
			}
			tools = append(tools, t)
		}

		if res.NextCursor == "" {
			return tools, nil
		}
		cursor = res.NextCursor
	}
}

func decodeTool(raw []byte) (mcp.Tool, error) {
	var t mcp.Tool
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, err
	}
	var wire struct {
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return t, err
	}
	t.InputSchema = mcp.ToolInputSchema{}
	t.RawInputSchema = wire.InputSchema
	return t, nil
}

// Name returns the logical server name.
func (c *Connector) Name() string {
	return c.name
}

// Status returns the current connection status.
func (c *Connector) Status() ServerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Connector) setStatus(s ServerStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// ServerInfo returns the name and version the server reported.
func (c *Connector) ServerInfo() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return "", ""
	}
	return c.info.ServerInfo.Name, c.info.ServerInfo.Version
}

// Catalog returns the tools discovered at connect time.
func (c *Connector) Catalog() *Catalog {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

func (c *Connector) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// CallTool invokes a catalog tool. Failures are *ToolInvocationError wrapping
// ErrUnknownTool, ErrChannelClosed, context.DeadlineExceeded or the
// transport's error.
func (c *Connector) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResponse, error) {
	if c == nil || c.closed() {
		return nil, &ToolInvocationError{Tool: name, Cause: ErrChannelClosed}
	}
	c.mu.RLock()
	cli, catalog := c.cli, c.catalog
	c.mu.RUnlock()
	if cli == nil {
		return nil, &ToolInvocationError{Tool: name, Cause: ErrChannelClosed}
	}
	if !catalog.Has(name) {
		return nil, &ToolInvocationError{Tool: name, Cause: fmt.Errorf("%w %q", ErrUnknownTool, name)}
	}

	cctx, cancel := withOptionalTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	// A Close while the call is in flight cancels it.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-stop:
		}
	}()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	started := time.Now()
	res, err := cli.CallTool(cctx, req)
	if err != nil {
		switch {
		case c.closed():
			err = ErrChannelClosed
		case ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("timed out after %s: %w", c.opts.CallTimeout, context.DeadlineExceeded)
		}
		logger.Debug("[MCP] server %q: call %s failed after %s: %v", c.name, name, time.Since(started), err)
		return nil, &ToolInvocationError{Tool: name, Cause: err}
	}

	logger.Debug("[MCP] server %q: call %s finished in %s", c.name, name, time.Since(started))
	return toToolResponse(res), nil
}

func toToolResponse(res *mcp.CallToolResult) *ToolResponse {
	out := &ToolResponse{}
	if res == nil {
		return out
	}
	out.IsError = res.IsError
	for _, content := range res.Content {
		switch v := content.(type) {
		case mcp.TextContent:
			out.Content = append(out.Content, ContentBlock{Type: "text", Text: v.Text})
		case *mcp.TextContent:
			out.Content = append(out.Content, ContentBlock{Type: "text", Text: v.Text})
		case mcp.ImageContent:
			out.Content = append(out.Content, ContentBlock{Type: "image"})
		case mcp.AudioContent:
			out.Content = append(out.Content, ContentBlock{Type: "audio"})
		case mcp.EmbeddedResource:
			out.Content = append(out.Content, ContentBlock{Type: "resource"})
		default:
			out.Content = append(out.Content, ContentBlock{Type: "unknown"})
		}
	}
	return out
}

// Close terminates the child process and releases the channel. It is
// idempotent and safe on a partially built Connector; in-flight calls resolve
// with ErrChannelClosed.
func (c *Connector) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		cli := c.cli
		c.cli = nil
		c.status = ServerStatusClosed
		c.mu.Unlock()

		if cli != nil {
			kill := time.AfterFunc(c.shutdownGrace(), func() {
				logger.Warn("[MCP] server %q still running %s after stdin closed, killing it", c.name, c.shutdownGrace())
				c.procCancel()
			})
			err := cli.Close()
			kill.Stop()
			if err != nil {
				logger.Warn("[MCP] server %q: failed to close client: %v", c.name, err)
				c.closeErr = err
			}
		}
		if c.procCancel != nil {
			c.procCancel()
		}
		logger.Info("[MCP] server %q closed", c.name)
	})
	return c.closeErr
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
