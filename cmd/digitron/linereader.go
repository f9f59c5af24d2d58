package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
)

// lineReader wraps liner with history persisted in the user's home
// directory.
type lineReader struct {
	ln       *liner.State
	histPath string
}

func newLineReader() *lineReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	return &lineReader{ln: ln, histPath: histPath}
}

// prompt reads one line. ok is false on EOF (Ctrl+D).
func (r *lineReader) prompt(p string) (line string, ok bool) {
	line, err := r.ln.Prompt(p)
	if errors.Is(err, io.EOF) {
		return "", false
	}
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", true // Ctrl+C cancels the line, not the session
	}
	if err != nil {
		return "", false
	}
	return line, true
}

func (r *lineReader) append(line string) {
	r.ln.AppendHistory(line)
}

func (r *lineReader) close() {
	if f, err := os.Create(r.histPath); err == nil {
		_, _ = r.ln.WriteHistory(f)
		_ = f.Close()
	}
	r.ln.Close()
}
