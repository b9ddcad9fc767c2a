package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kiosk404/warp/pkg/version"
)

func TestNewWrpCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	root := NewWrpCommand(strings.NewReader(""), &out, &errOut)

	for _, name := range []string{"chat", "tools", "history", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %s missing: %v", name, err)
		}
	}
	for _, flag := range []string{"conf", "llm.provider", "mcp.servers", "chat.verbose", "store.type", "log.level", "metrics.addr"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("flag --%s not registered", flag)
		}
	}
	if f := root.PersistentFlags().ShorthandLookup("v"); f == nil || f.Name != "chat.verbose" {
		t.Errorf("-v is %v", f)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := NewWrpCommand(strings.NewReader(""), &out, &bytes.Buffer{})
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "wrp "+version.GitVersion) {
		t.Errorf("version output = %q", out.String())
	}
}
