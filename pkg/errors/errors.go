package errors

import (
	"fmt"
	"os"
	"strings"
)

// DigitronError is the interface implemented by all Digitron errors.
type DigitronError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Runtime", "Alloc"
	// Message returns the specific error message without position info.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// AllocError represents node pool exhaustion. It carries a position when the
// failing allocation happened during parsing; a zero position otherwise.
type AllocError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *AllocError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("Alloc Error: %s", e.Msg)
	}
	return fmt.Sprintf("Alloc Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *AllocError) Pos() Position   { return e.Position }
func (e *AllocError) Kind() string    { return "Alloc" }
func (e *AllocError) Message() string { return e.Msg }
func (e *AllocError) Unwrap() error   { return e.Cause }
func (e *AllocError) CausedBy(cause error) *AllocError {
	e.Cause = cause
	return e
}

// RuntimeError represents an error during expression evaluation.
type RuntimeError struct {
	// Evaluation errors have no token position: pool nodes carry no source
	// spans. The Position stays zero-valued and Error() formats accordingly.
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *RuntimeError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("Runtime Error: %s", e.Msg)
	}
	return fmt.Sprintf("Runtime Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *RuntimeError) Pos() Position   { return e.Position }
func (e *RuntimeError) Kind() string    { return "Runtime" }
func (e *RuntimeError) Message() string { return e.Msg }
func (e *RuntimeError) Unwrap() error   { return e.Cause }
func (e *RuntimeError) CausedBy(cause error) *RuntimeError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors prints a list of Digitron errors to stderr in a user-friendly
// format, including the source line and position marker.
func DisplayErrors(source string, errors []DigitronError) {
	if len(errors) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errors {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			// Print a generic error if line info is invalid
			fmt.Fprintf(os.Stderr, "%s Error: %s\n", kind, msg)
			continue
		}

		sourceLine := lines[lineIdx]
		trimmedLine := strings.TrimRight(sourceLine, "\r\n\t ")

		// Format: <Kind> Error at <Line>:<Column>: <Message>
		fmt.Fprintf(os.Stderr, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)

		// Print the source line followed by a marker line (^)
		fmt.Fprintf(os.Stderr, "  %s\n", trimmedLine)
		marker := strings.Repeat(" ", pos.Column) + "^"
		fmt.Fprintf(os.Stderr, "  %s\n", marker)
		fmt.Fprintln(os.Stderr)
	}
}
