package engine

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const resultsTimeLayout = "2006-01-02 15:04:05"

// WriteResults writes one results block for the match so far: header,
// timestamp, player count, every round's log line, and a final tally per
// player in roster order, ending with a 50-character separator line.
func (e *Engine) WriteResults(w io.Writer, now time.Time) error {
	var b strings.Builder
	b.WriteString("=== Dice Game Results ===\n")
	fmt.Fprintf(&b, "Date: %s\n", now.Format(resultsTimeLayout))
	fmt.Fprintf(&b, "Players: %d\n\n", len(e.players))
	for _, line := range e.gameLog {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nFinal Results:\n")
	for _, p := range e.players {
		fmt.Fprintf(&b, "%s: %d wins\n", p.Name, p.Wins)
	}
	fmt.Fprintf(&b, "\n%s\n\n", strings.Repeat("=", 50))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// SaveResults appends a results block to the file at path, creating it
// if needed. Existing content is never truncated; saving the same match
// twice produces two identical blocks.
func (e *Engine) SaveResults(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	if err := e.WriteResults(f, time.Now()); err != nil {
		return err
	}
	return f.Close()
}
