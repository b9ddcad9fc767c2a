package adapter

import "strings"

// builtinAgentTools are the tools agent CLIs ship with. They are dropped from
// tool listings so only server-provided tools remain.
var builtinAgentTools = map[string]struct{}{
	"read":      {},
	"write":     {},
	"edit":      {},
	"list":      {},
	"glob":      {},
	"grep":      {},
	"bash":      {},
	"task":      {},
	"todowrite": {},
	"todoread":  {},
	"webfetch":  {},
}

// ExtractMCPTools filters an agent's tool listing of the form
//
//	# header
//	tool - description
//
// down to the sections whose header names one of servers or mentions "mcp",
// dropping builtin tools and any line that is not a tool entry.
func ExtractMCPTools(listing string, servers []string) string {
	var kept []string
	skip := false

	for _, line := range strings.Split(listing, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(line, "# ") {
			skip = !isMCPHeader(trimmed, servers)
			if !skip {
				kept = append(kept, line)
			}
			continue
		}
		if skip || !strings.Contains(trimmed, " - ") {
			continue
		}

		name := strings.TrimSpace(strings.SplitN(trimmed, " - ", 2)[0])
		if _, builtin := builtinAgentTools[name]; builtin {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isMCPHeader(header string, servers []string) bool {
	h := strings.ToLower(header)
	if strings.Contains(h, "mcp") {
		return true
	}
	for _, s := range servers {
		if s != "" && strings.Contains(h, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
