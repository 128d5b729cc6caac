// Package tui provides terminal user interface components for voyager.
package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints tabular data.
	Table(headers []string, rows [][]string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// Output format identifiers accepted by the --output flag. FormatAuto lets
// NewOutput pick based on whether w is a terminal.
const (
	FormatAuto = ""
	FormatText = "text"
	FormatJSON = "json"
)

// jsonMessage is the wire shape for Success/Warning/Info under JSONOutput.
type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// jsonError is the wire shape for Error under JSONOutput. Details carries
// the next error in the chain so a wrapped sentinel remains visible to
// machine consumers even though Message is the full wrapped string.
type jsonError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// JSONOutput provides indented JSON output without styling, for
// scripting and machine consumption (--output json).
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Success emits a success-typed JSON message.
func (o *JSONOutput) Success(msg string) {
	o.emit(jsonMessage{Type: "success", Message: msg})
}

// Error emits an error-typed JSON message. If err wraps another error, the
// wrapped error's text is carried in Details.
func (o *JSONOutput) Error(err error) {
	out := jsonError{Type: "error", Message: err.Error()}
	if inner := errors.Unwrap(err); inner != nil {
		out.Details = inner.Error()
	}
	o.emit(out)
}

// Warning emits a warning-typed JSON message.
func (o *JSONOutput) Warning(msg string) {
	o.emit(jsonMessage{Type: "warning", Message: msg})
}

// Info emits an info-typed JSON message.
func (o *JSONOutput) Info(msg string) {
	o.emit(jsonMessage{Type: "info", Message: msg})
}

// Table emits rows as a JSON array of header-keyed objects.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, len(rows))
	for i, row := range rows {
		obj := make(map[string]string, len(headers))
		for j, h := range headers {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			obj[h] = value
		}
		result[i] = obj
	}
	o.emit(result)
}

// JSON outputs a value as formatted JSON.
func (o *JSONOutput) JSON(v any) error {
	return o.emit(v)
}

func (o *JSONOutput) emit(v any) error {
	encoder := json.NewEncoder(o.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// isTTY reports whether w is a terminal. Non-*os.File writers (buffers,
// pipes used in tests) are never terminals.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// NewOutput creates the appropriate Output for the requested format.
// FormatAuto picks TTYOutput when w is a terminal, else JSONOutput (so
// piped/redirected output defaults to machine-readable).
func NewOutput(w io.Writer, format string) Output {
	switch format {
	case FormatJSON:
		return NewJSONOutput(w)
	case FormatText:
		return NewTTYOutput(w)
	default:
		if isTTY(w) {
			return NewTTYOutput(w)
		}
		return NewJSONOutput(w)
	}
}
