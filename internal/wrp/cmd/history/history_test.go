package history

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/store/inmemory"
)

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewSessionStore()

	var buf bytes.Buffer
	if err := ListSessions(ctx, store, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Errorf("empty listing = %q", buf.String())
	}

	s := entity.NewSession("hdf5", "openai")
	s.AppendMessage(entity.NewUserMessage("list files"))
	if err := store.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := ListSessions(ctx, store, &buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ID", s.ID, "hdf5", "openai"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("listing missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintTranscript(t *testing.T) {
	s := entity.NewSession("hdf5", "openai")
	s.AppendMessage(entity.NewUserMessage("list files"))
	s.AppendMessage(entity.NewAssistantMessage("Found a.h5."))
	s.AddUsage(10, 5, 15)

	var buf bytes.Buffer
	PrintTranscript(&buf, s)
	got := buf.String()
	for _, want := range []string{"server hdf5", "you [", "list files", "assistant [", "Found a.h5.", "15 total"} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}
