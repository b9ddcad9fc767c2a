package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg/errno"
	"github.com/kiosk404/warp/internal/wrp/service/agents/store/inmemory"
	llmEntity "github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

type fakeConn struct {
	mu      sync.Mutex
	catalog *mcp.Catalog
	closes  int
	closed  bool
}

func (c *fakeConn) Name() string          { return "hdf5" }
func (c *fakeConn) Catalog() *mcp.Catalog { return c.catalog }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	c.closed = true
	return nil
}

func (c *fakeConn) CallTool(_ context.Context, name string, _ map[string]any) (*mcp.ToolResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, &mcp.ToolInvocationError{Tool: name, Cause: mcp.ErrChannelClosed}
	}
	return &mcp.ToolResponse{Content: []mcp.ContentBlock{{Type: "text", Text: "a.h5"}}}, nil
}

type replyProvider struct {
	replies []*llmEntity.Reply
	err     error
	n       int
	last    []*llmEntity.ChatMessage
}

func (p *replyProvider) Name() string { return "fake" }

func (p *replyProvider) Chat(_ context.Context, history []*llmEntity.ChatMessage, _ []*llmEntity.ToolDefinition) (*llmEntity.Reply, error) {
	p.last = history
	if p.err != nil {
		return nil, p.err
	}
	r := p.replies[p.n%len(p.replies)]
	p.n++
	return r, nil
}

func newCatalog(t *testing.T) *mcp.Catalog {
	t.Helper()
	c, err := mcp.NewCatalog("hdf5", []mcpgo.Tool{mcpgo.NewTool("list_hdf5", mcpgo.WithDescription("List files"))})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestWarpManagerLifecycle(t *testing.T) {
	conn := &fakeConn{catalog: newCatalog(t)}
	provider := &replyProvider{replies: []*llmEntity.Reply{
		{ToolCalls: []*llmEntity.ToolCall{{Name: "list_hdf5", Args: map[string]any{}}}},
		{Text: "Found a.h5."},
	}}
	store := inmemory.NewSessionStore()
	m := NewWarpManager(provider, func(context.Context, *mcp.ServerConfig) (Connection, error) {
		return conn, nil
	}, store, Options{})

	if got := m.ProcessQuery(context.Background(), "early"); !strings.Contains(got, errno.ErrNotConnected.Error()) {
		t.Errorf("query before connect = %q", got)
	}

	if err := m.Connect(context.Background(), &mcp.ServerConfig{Name: "hdf5", Command: "x"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Connect(context.Background(), &mcp.ServerConfig{Name: "hdf5", Command: "x"}); !errors.Is(err, errno.ErrAlreadyConnected) {
		t.Errorf("second Connect: err = %v", err)
	}
	if m.Catalog().Len() != 1 {
		t.Errorf("catalog = %v", m.Catalog().Names())
	}

	if got := m.ProcessQuery(context.Background(), "list files"); got != "Found a.h5." {
		t.Fatalf("response = %q", got)
	}

	stored, err := store.Get(context.Background(), m.Session().ID)
	if err != nil || len(stored.Messages) != 4 || stored.Server != "hdf5" {
		t.Fatalf("stored session = %+v, %v", stored, err)
	}

	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if err := m.Cleanup(); err != nil {
		t.Fatalf("second Cleanup: %v", err)
	}
	if conn.closes != 1 {
		t.Errorf("connection closed %d times, want 1", conn.closes)
	}
	if err := m.Connect(context.Background(), &mcp.ServerConfig{Name: "hdf5", Command: "x"}); !errors.Is(err, errno.ErrCleanedUp) {
		t.Errorf("Connect after cleanup: err = %v", err)
	}
}

func TestWarpManagerConnectFailure(t *testing.T) {
	cause := &mcp.ConnectionError{Server: "hdf5", Stage: mcp.StageInitialize, Cause: errors.New("eof")}
	m := NewWarpManager(&replyProvider{}, func(context.Context, *mcp.ServerConfig) (Connection, error) {
		return nil, cause
	}, nil, Options{})

	err := m.Connect(context.Background(), &mcp.ServerConfig{Name: "hdf5", Command: "x"})
	var ce *mcp.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v", err)
	}
	if err := m.Cleanup(); err != nil {
		t.Errorf("Cleanup after failed connect: %v", err)
	}
	if m.Catalog() != nil || m.Session() != nil {
		t.Error("failed connect left state behind")
	}
}

func TestWarpManagerToolsAfterCleanup(t *testing.T) {
	conn := &fakeConn{catalog: newCatalog(t)}
	provider := &replyProvider{replies: []*llmEntity.Reply{
		{ToolCalls: []*llmEntity.ToolCall{{Name: "list_hdf5", Args: map[string]any{}}}},
		{Text: "sorry"},
	}}
	m := NewWarpManager(provider, func(context.Context, *mcp.ServerConfig) (Connection, error) {
		return conn, nil
	}, nil, Options{})
	if err := m.Connect(context.Background(), &mcp.ServerConfig{Name: "hdf5", Command: "x"}); err != nil {
		t.Fatal(err)
	}
	_ = m.Cleanup()

	if got := m.ProcessQuery(context.Background(), "q"); got != "sorry" {
		t.Fatalf("response = %q", got)
	}
	if !strings.Contains(provider.last[0].Content, "Error calling list_hdf5: connection closed") {
		t.Errorf("synthesis input = %q", provider.last[0].Content)
	}
}

func TestExternalManager(t *testing.T) {
	provider := &replyProvider{replies: []*llmEntity.Reply{{Text: "agent answer"}}}
	store := inmemory.NewSessionStore()
	m := NewExternalManager(provider, store, Options{Verbose: true})

	if err := m.Connect(context.Background(), &mcp.ServerConfig{Name: "hdf5"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if m.Catalog() != nil {
		t.Error("external manager has no catalog")
	}

	m.ProcessQuery(context.Background(), "first")
	if got := m.ProcessQuery(context.Background(), "second"); got != "agent answer" {
		t.Fatalf("response = %q", got)
	}
	if len(provider.last) != 1 || provider.last[0].Content != "second" {
		t.Errorf("provider saw %+v, want only the query", provider.last)
	}

	provider.err = errors.New("claude: command not found")
	if got := m.ProcessQuery(context.Background(), "third"); got != "Error during LLM processing: claude: command not found" {
		t.Errorf("failure response = %q", got)
	}
	if err := m.Cleanup(); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
	if s := m.Session(); len(s.Messages) != 5 {
		t.Errorf("transcript length = %d, want 5", len(s.Messages))
	}
}
