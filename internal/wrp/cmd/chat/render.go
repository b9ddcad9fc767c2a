package chat

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/moby/term"
	"github.com/muesli/termenv"
	xterm "golang.org/x/term"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	traceColor = color.New(color.FgHiBlack)
)

// Renderer formats responses for the terminal. Output that is not a
// terminal gets the text unchanged.
type Renderer struct {
	markdown bool
	width    int
}

func NewRenderer(out io.Writer) *Renderer {
	fd, isTerm := term.GetFdInfo(out)
	if !isTerm {
		return &Renderer{}
	}
	w, _, err := xterm.GetSize(int(fd))
	if err != nil || w <= 0 {
		w = 80
	}
	return &Renderer{markdown: true, width: w}
}

func (r *Renderer) Render(s string) string {
	if !r.markdown {
		return s
	}
	if strings.HasPrefix(s, "Error during") {
		return errorColor.Sprint(s)
	}

	// Trace lines lead the response and stay verbatim.
	lines := strings.Split(s, "\n")
	var trace []string
	for len(lines) > 0 && isTraceLine(lines[0]) {
		trace = append(trace, traceColor.Sprint(lines[0]))
		lines = lines[1:]
	}
	body := renderMarkdown(strings.Join(lines, "\n"), r.width-4)
	if len(trace) == 0 {
		return body
	}
	return strings.Join(trace, "\n") + "\n" + body
}

func isTraceLine(line string) bool {
	return strings.HasPrefix(line, "[Calling tool ") ||
		strings.HasPrefix(line, "[Called ") ||
		strings.HasPrefix(line, "[Error calling ")
}

func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(termenv.ANSI256),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
