package source

import "strings"

// SourceFile represents a program text with its display metadata.
// Digitron programs are one-line expressions, but errors still carry a
// source reference so they can be rendered with a caret marker.
type SourceFile struct {
	Name    string   // Display name (e.g., "program-7", "<eval>", "<repl>")
	Content string   // The program text
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file.
func NewSourceFile(name, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Content: content,
	}
}

// NewEvalSource creates a source for one-shot eval input.
func NewEvalSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<eval>",
		Content: content,
	}
}

// NewReplSource creates a source for REPL input.
func NewReplSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<repl>",
		Content: content,
	}
}

// Lines returns the source split into lines (cached).
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}
