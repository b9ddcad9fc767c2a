package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Querier answers one query with display text.
type Querier interface {
	ProcessQuery(ctx context.Context, query string) string
}

// LineReader feeds stdin lines to successive chat loops. One reader is
// shared by all sessions so no line is lost between them.
type LineReader struct {
	lines chan string

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewLineReader starts reading in in the background. The channel closes on
// EOF or Stop.
func NewLineReader(in io.Reader) *LineReader {
	r := &LineReader{
		lines: make(chan string),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		defer close(r.lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case r.lines <- sc.Text():
			case <-r.stop:
				return
			}
		}
	}()
	return r
}

// Stop releases the background reader. A read already blocked on in
// finishes first, then the goroutine exits without delivering the line.
func (r *LineReader) Stop() {
	if r == nil || r.stop == nil {
		return
	}
	r.stopOnce.Do(func() { close(r.stop) })
}

func isQuit(q string) bool {
	switch strings.ToLower(q) {
	case "quit", "exit", "/quit", "/exit":
		return true
	}
	return false
}

// RunLoop reads queries until quit, EOF or ctx is done, printing each
// response through render.
func RunLoop(ctx context.Context, q Querier, lines *LineReader, out io.Writer, render func(string) string) {
	fmt.Fprintln(out, "\nMCP Client Started! (type 'quit' to exit)")
	for {
		fmt.Fprint(out, "\nQuery: ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nExiting...")
			return
		case line, ok := <-lines.lines:
			if !ok {
				fmt.Fprintln(out, "\nExiting...")
				return
			}
			query := strings.TrimSpace(line)
			if query == "" {
				continue
			}
			if isQuit(query) {
				return
			}
			fmt.Fprintf(out, "\n%s\n", render(q.ProcessQuery(ctx, query)))
		}
	}
}
