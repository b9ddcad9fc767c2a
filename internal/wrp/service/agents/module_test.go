package agents

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
)

type nopProvider struct{}

func (nopProvider) Name() string { return "nop" }

func (nopProvider) Chat(context.Context, []*entity.ChatMessage, []*entity.ToolDefinition) (*entity.Reply, error) {
	return &entity.Reply{Text: "ok"}, nil
}

func TestNewSelectsStore(t *testing.T) {
	cfg := &Config{StoreType: StoreBoltDB, BoltDBPath: filepath.Join(t.TempDir(), "wrp.db")}
	m, err := cfg.Complete().New(context.Background(), Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()
	if m.boltDB == nil || m.Sessions == nil {
		t.Fatal("boltdb store not opened")
	}

	if _, err := (&Config{StoreType: "sqlite"}).Complete().New(context.Background(), Dependencies{}); err == nil {
		t.Error("unknown store type accepted")
	}
}

func TestNewManagerVariant(t *testing.T) {
	mcpMod, err := (&mcp.Config{}).Complete().New(context.Background())
	if err != nil {
		t.Fatalf("mcp module: %v", err)
	}
	m, err := (&Config{}).Complete().New(context.Background(), Dependencies{MCP: mcpMod})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ext, err := m.NewManager(nopProvider{}, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ext.(*service.ExternalManager); !ok {
		t.Errorf("managesTools=true gave %T", ext)
	}

	direct, err := m.NewManager(nopProvider{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := direct.(*service.WarpManager); !ok {
		t.Errorf("managesTools=false gave %T", direct)
	}

	bare, _ := (&Config{}).Complete().New(context.Background(), Dependencies{})
	if _, err := bare.NewManager(nopProvider{}, false); err == nil {
		t.Error("direct manager without MCP module accepted")
	}
}
