package boltdb_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/repo"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg/errno"
	"github.com/kiosk404/warp/internal/wrp/service/agents/store/boltdb"
	"github.com/kiosk404/warp/internal/wrp/service/agents/store/inmemory"
)

func stores(t *testing.T) map[string]repo.SessionRepository {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "nested", "wrp.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]repo.SessionRepository{
		"inmemory": inmemory.NewSessionStore(),
		"boltdb":   boltdb.NewSessionStore(db),
	}
}

func TestSessionStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			older := entity.NewSession("hdf5", "openai")
			older.AppendMessage(entity.NewUserMessage("list files"))
			if err := store.Create(ctx, older); err != nil {
				t.Fatalf("Create: %v", err)
			}

			newer := entity.NewSession("adios", "openai")
			newer.UpdatedAt = older.UpdatedAt.Add(time.Minute)
			if err := store.Create(ctx, newer); err != nil {
				t.Fatalf("Create: %v", err)
			}

			// Changes after Create are not visible until Update.
			older.AppendMessage(entity.NewAssistantMessage("a.h5"))
			got, err := store.Get(ctx, older.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(got.Messages) != 1 || got.Server != "hdf5" {
				t.Fatalf("stored session = %+v", got)
			}

			if err := store.Update(ctx, older); err != nil {
				t.Fatalf("Update: %v", err)
			}
			got, _ = store.Get(ctx, older.ID)
			if len(got.Messages) != 2 || got.Messages[1].Content != "a.h5" || got.Messages[1].Role != entity.RoleAssistant {
				t.Fatalf("updated messages = %+v", got.Messages)
			}

			list, err := store.List(ctx)
			if err != nil || len(list) != 2 || list[0].ID != newer.ID {
				t.Fatalf("List = %v, %v", list, err)
			}

			if err := store.Delete(ctx, newer.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, newer.ID); !errors.Is(err, errno.ErrSessionNotFound) {
				t.Errorf("Get after delete: err = %v", err)
			}
			if err := store.Update(ctx, newer); !errors.Is(err, errno.ErrSessionNotFound) {
				t.Errorf("Update of missing session: err = %v", err)
			}
		})
	}
}
