package mcp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const serverScript = "server.py"

// Locator turns a server name into a launch command. Lookup order:
//  1. an entry in mcp.json
//  2. an existing file path
//  3. server.py under <root>/mcps/<name>/src, then <root>/<name>, for each
//     search root in order
type Locator struct {
	Config      *MCPConfig
	SearchRoots []string
	Python      string
}

// Resolve returns the launch configuration for nameOrPath.
func (l *Locator) Resolve(nameOrPath string) (*ServerConfig, error) {
	if nameOrPath == "" {
		return nil, fmt.Errorf("%w: empty server name", ErrServerNotFound)
	}

	if cfg, ok := l.Config.Lookup(nameOrPath); ok {
		return cfg, cfg.Validate()
	}

	if info, err := os.Stat(nameOrPath); err == nil && !info.IsDir() {
		return l.fromPath(serverName(nameOrPath), nameOrPath), nil
	}

	for _, root := range l.SearchRoots {
		for _, dir := range []string{
			filepath.Join(root, "mcps", nameOrPath, "src"),
			filepath.Join(root, nameOrPath),
		} {
			if path, ok := findScript(dir); ok {
				return l.fromPath(nameOrPath, path), nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %q (searched %s)", ErrServerNotFound, nameOrPath, strings.Join(l.SearchRoots, ", "))
}

func (l *Locator) fromPath(name, path string) *ServerConfig {
	command, args := ResolveServerCommand(path, l.Python)
	return &ServerConfig{Name: name, Command: command, Args: args}
}

// ResolveServerCommand maps a server script path to a command line. Python
// scripts run under python (python3 when empty); anything else is executed
// directly.
func ResolveServerCommand(path, python string) (string, []string) {
	if strings.EqualFold(filepath.Ext(path), ".py") {
		if python == "" {
			python = "python3"
		}
		return python, []string{path}
	}
	return path, nil
}

// findScript walks dir in lexical order and returns the first server.py.
func findScript(dir string) (string, bool) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	var found string
	errStop := errors.New("stop")
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == serverScript {
			found = path
			return errStop
		}
		return nil
	})
	return found, found != ""
}

func serverName(path string) string {
	base := filepath.Base(path)
	if base == serverScript {
		dir := filepath.Dir(path)
		if filepath.Base(dir) == "src" {
			dir = filepath.Dir(dir)
		}
		return filepath.Base(dir)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
