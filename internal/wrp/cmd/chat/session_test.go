package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	agentEntity "github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

type fakeManager struct {
	connectErr error
	catalog    *mcp.Catalog
	queries    []string
	cleanups   int
}

func (m *fakeManager) Connect(context.Context, *mcp.ServerConfig) error { return m.connectErr }

func (m *fakeManager) ProcessQuery(_ context.Context, q string) string {
	m.queries = append(m.queries, q)
	return "answer to " + q
}

func (m *fakeManager) Cleanup() error {
	m.cleanups++
	return nil
}

func (m *fakeManager) Catalog() *mcp.Catalog        { return m.catalog }
func (m *fakeManager) Session() *agentEntity.Session { return nil }

func identity(s string) string { return s }

func newRunner(m *fakeManager, query, input string) (*sessionRunner, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	r := &sessionRunner{
		newManager: func() (service.Manager, error) { return m, nil },
		query:      query,
		out:        out,
		errOut:     errOut,
		render:     identity,
	}
	if query == "" {
		r.lines = NewLineReader(strings.NewReader(input))
	}
	return r, out, errOut
}

func hdf5Catalog(t *testing.T) *mcp.Catalog {
	t.Helper()
	c, err := mcp.NewCatalog("hdf5", []mcpgo.Tool{mcpgo.NewTool("list_hdf5", mcpgo.WithDescription("List HDF5 files"))})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSessionSingleQuery(t *testing.T) {
	m := &fakeManager{catalog: hdf5Catalog(t)}
	r, out, _ := newRunner(m, "list files", "")

	r.run(context.Background(), serverTarget{name: "hdf5", cfg: &mcp.ServerConfig{Name: "hdf5", Command: "python3"}})

	got := out.String()
	for _, want := range []string{
		"=== Connecting to hdf5 ===",
		"Connected. Tools available:",
		" * list_hdf5: List HDF5 files",
		"answer to list files",
		"Session with hdf5 ended.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if m.cleanups != 1 {
		t.Errorf("cleanups = %d", m.cleanups)
	}
}

func TestSessionLoop(t *testing.T) {
	m := &fakeManager{catalog: hdf5Catalog(t)}
	r, out, _ := newRunner(m, "", "first\n\n  second  \nQUIT\nnever\n")

	r.run(context.Background(), serverTarget{name: "hdf5", cfg: &mcp.ServerConfig{Name: "hdf5", Command: "python3"}})

	if strings.Join(m.queries, "|") != "first|second" {
		t.Errorf("queries = %q", m.queries)
	}
	if !strings.Contains(out.String(), "MCP Client Started!") || m.cleanups != 1 {
		t.Errorf("output = %s, cleanups = %d", out.String(), m.cleanups)
	}

	// The line after quit is left for the next session.
	next := &fakeManager{}
	r.newManager = func() (service.Manager, error) { return next, nil }
	r.run(context.Background(), serverTarget{name: "arxiv", cfg: &mcp.ServerConfig{Name: "arxiv", Command: "python3"}})
	if strings.Join(next.queries, "|") != "never" {
		t.Errorf("second session queries = %q", next.queries)
	}
	if !strings.Contains(out.String(), "Exiting...") {
		t.Error("EOF did not end the loop")
	}
}

func TestSessionFailures(t *testing.T) {
	m := &fakeManager{connectErr: errors.New("spawn failed")}
	r, out, errOut := newRunner(m, "q", "")

	r.run(context.Background(), serverTarget{name: "nope", err: mcp.ErrServerNotFound})
	if !strings.Contains(errOut.String(), "Error: tool server not found") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if m.cleanups != 0 {
		t.Error("manager created for an unresolved server")
	}

	r.run(context.Background(), serverTarget{name: "hdf5", cfg: &mcp.ServerConfig{Name: "hdf5", Command: "x"}})
	if !strings.Contains(errOut.String(), "An unexpected error occurred with server hdf5: spawn failed") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if m.cleanups != 1 || len(m.queries) != 0 {
		t.Errorf("cleanups = %d, queries = %v", m.cleanups, m.queries)
	}
	if strings.Count(out.String(), "ended.") != 2 {
		t.Errorf("output = %s", out.String())
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &fakeManager{}
	var out bytes.Buffer
	lr := &LineReader{lines: make(chan string)}

	RunLoop(ctx, m, lr, &out, identity)
	if len(m.queries) != 0 || !strings.Contains(out.String(), "Exiting...") {
		t.Errorf("queries = %v, output = %q", m.queries, out.String())
	}
}

func TestLineReaderStop(t *testing.T) {
	lr := NewLineReader(strings.NewReader("first\nsecond\n"))
	if line := <-lr.lines; line != "first" {
		t.Fatalf("line = %q, want first", line)
	}

	lr.Stop()
	lr.Stop()
	select {
	case <-lr.done:
	case <-time.After(5 * time.Second):
		t.Fatal("reader goroutine still blocked after Stop")
	}
}

func TestRendererPlainOutput(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})
	in := "[Calling tool list_hdf5 with args {}]\n**found** a.h5"
	if got := r.Render(in); got != in {
		t.Errorf("non-terminal output changed: %q", got)
	}
}
