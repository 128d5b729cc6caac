// Package tui provides terminal user interface components for voyager.
package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/oceanvoyage/voyager/internal/domain"
)

// TableColumn defines a column in a table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table provides styled table rendering.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a new table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the table header row.
func (t *Table) WriteHeader() {
	header := ""
	for i, col := range t.columns {
		if i > 0 {
			header += " "
		}
		format := t.formatSpec(col)
		header += fmt.Sprintf(format, col.Name)
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(header))
}

// WriteRow writes a data row to the table.
func (t *Table) WriteRow(values ...string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		format := t.formatSpec(col)
		value := ""
		if i < len(values) {
			value = values[i]
		}
		if col.Width > 1 && len(value) > col.Width {
			value = value[:col.Width-1] + "…"
		}
		row += fmt.Sprintf(format, value)
	}
	_, _ = fmt.Fprintln(t.w, row)
}

// formatSpec returns the format specifier for a column.
func (t *Table) formatSpec(col TableColumn) string {
	switch col.Align {
	case AlignRight:
		return fmt.Sprintf("%%%ds", col.Width)
	case AlignLeft, AlignCenter:
		return fmt.Sprintf("%%-%ds", col.Width)
	default:
		return fmt.Sprintf("%%-%ds", col.Width)
	}
}

// ========================================
// StatusTable - Voyage Status Display
// ========================================

// MinColumnWidths defines the minimum width for each status table column.
//
//nolint:gochecknoglobals // Intentional package-level constant for status table minimum widths
var MinColumnWidths = StatusColumnWidths{
	Ship:    10,
	State:   12,
	Task:    18,
	Claimed: 12,
	Action:  18,
}

// StatusColumnWidths holds the widths for each status table column.
type StatusColumnWidths struct {
	Ship    int
	State   int
	Task    int
	Claimed int
	Action  int
}

// StatusRow represents one row in the ship status table, sourced from
// domain.ShipStatus plus a pre-formatted claimed-at string (relative time
// formatting belongs to the caller, via RelativeTime).
type StatusRow struct {
	Ship         string
	State        domain.ShipState
	CurrentTask  string
	ClaimedFor   string
	CompletedCount int
}

// StatusTableConfig holds configuration for the status table.
type StatusTableConfig struct {
	// TerminalWidth is the detected terminal width (or forced width for testing).
	TerminalWidth int
	// Narrow indicates whether to use abbreviated headers (< NarrowTerminalWidth cols).
	Narrow bool
}

// StatusTableOption is a functional option for StatusTable configuration.
type StatusTableOption func(*StatusTable)

// WithTerminalWidth sets a specific terminal width (useful for testing).
func WithTerminalWidth(width int) StatusTableOption {
	return func(t *StatusTable) {
		t.config.TerminalWidth = width
		t.config.Narrow = width > 0 && width < NarrowTerminalWidth
	}
}

// StatusTable renders per-ship status in a formatted table.
// Supports both TTY and JSON output via the ToTableData method.
type StatusTable struct {
	rows   []StatusRow
	styles *TableStyles
	config StatusTableConfig
}

// NewStatusTable creates a new status table with the given rows.
// Automatically detects terminal width and narrow mode.
func NewStatusTable(rows []StatusRow, opts ...StatusTableOption) *StatusTable {
	t := &StatusTable{
		rows:   rows,
		styles: NewTableStyles(),
		config: StatusTableConfig{
			TerminalWidth: TerminalWidth(),
		},
	}

	t.config.Narrow = t.config.TerminalWidth > 0 && t.config.TerminalWidth < NarrowTerminalWidth

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// IsNarrow returns true if the terminal is in narrow mode (< NarrowTerminalWidth cols).
func (t *StatusTable) IsNarrow() bool {
	return t.config.Narrow
}

// Headers returns the column headers, abbreviated if in narrow mode.
func (t *StatusTable) Headers() []string {
	if t.config.Narrow {
		return []string{"SHIP", "STATE", "TASK", "CLAIMED", "ACT"}
	}
	return t.FullHeaders()
}

// FullHeaders returns the full (non-abbreviated) column headers.
// Used for JSON output which should always use full names.
func (t *StatusTable) FullHeaders() []string {
	return []string{"SHIP", "STATE", "TASK", "CLAIMED", "ACTION"}
}

// Render writes the formatted table to the writer.
// Uses bold header styling and proper column alignment.
func (t *StatusTable) Render(w io.Writer) error {
	headers := t.Headers()
	widths := t.calculateColumnWidths()
	widthsSlice := []int{widths.Ship, widths.State, widths.Task, widths.Claimed, widths.Action}

	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = t.styles.Header.Render(padRight(h, widthsSlice[i]))
	}
	if _, err := fmt.Fprintln(w, strings.Join(headerParts, "  ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		rowCells := []string{
			padRight(row.Ship, widths.Ship),
			t.renderStateCellPadded(row.State, widths.State),
			padRight(row.CurrentTask, widths.Task),
			padRight(row.ClaimedFor, widths.Claimed),
			t.renderActionCellPadded(row.State, widths.Action),
		}
		if _, err := fmt.Fprintln(w, strings.Join(rowCells, "  ")); err != nil {
			return err
		}
	}

	return nil
}

// ToTableData converts the table to Output.Table() compatible format.
// Uses abbreviated headers in narrow mode.
func (t *StatusTable) ToTableData() ([]string, [][]string) {
	headers := t.Headers()

	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = []string{
			row.Ship,
			t.renderStateCellPlain(row.State),
			row.CurrentTask,
			row.ClaimedFor,
			t.renderActionCellPlain(row.State),
		}
	}
	return headers, rows
}

// ToJSONData converts the table to JSON-compatible format, always using
// full (non-abbreviated) header names.
func (t *StatusTable) ToJSONData() ([]string, [][]string) {
	headers := t.FullHeaders()

	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = []string{
			row.Ship,
			t.renderStateCellPlain(row.State),
			row.CurrentTask,
			row.ClaimedFor,
			t.renderActionCellPlain(row.State),
		}
	}
	return headers, rows
}

// Rows returns a copy of the status rows (useful for iteration).
func (t *StatusTable) Rows() []StatusRow {
	if t.rows == nil {
		return nil
	}
	result := make([]StatusRow, len(t.rows))
	copy(result, t.rows)
	return result
}

// calculateColumnWidths calculates widths for each column based on content.
// Uses utf8.RuneCountInString for proper Unicode handling.
func (t *StatusTable) calculateColumnWidths() StatusColumnWidths {
	headers := t.Headers()
	widths := StatusColumnWidths{
		Ship:    max(MinColumnWidths.Ship, utf8.RuneCountInString(headers[0])),
		State:   max(MinColumnWidths.State, utf8.RuneCountInString(headers[1])),
		Task:    max(MinColumnWidths.Task, utf8.RuneCountInString(headers[2])),
		Claimed: max(MinColumnWidths.Claimed, utf8.RuneCountInString(headers[3])),
		Action:  max(MinColumnWidths.Action, utf8.RuneCountInString(headers[4])),
	}

	for _, row := range t.rows {
		if w := utf8.RuneCountInString(row.Ship); w > widths.Ship {
			widths.Ship = w
		}
		if w := utf8.RuneCountInString(t.renderStateCellPlain(row.State)); w > widths.State {
			widths.State = w
		}
		if w := utf8.RuneCountInString(row.CurrentTask); w > widths.Task {
			widths.Task = w
		}
		if w := utf8.RuneCountInString(row.ClaimedFor); w > widths.Claimed {
			widths.Claimed = w
		}
		if w := utf8.RuneCountInString(t.renderActionCellPlain(row.State)); w > widths.Action {
			widths.Action = w
		}
	}

	return t.constrainToTerminalWidth(widths)
}

// constrainToTerminalWidth reduces column widths to fit within terminal width.
// Prioritizes reducing variable-width columns (Task) while preserving
// fixed-width columns to ensure all columns are visible.
func (t *StatusTable) constrainToTerminalWidth(widths StatusColumnWidths) StatusColumnWidths {
	const separatorWidth = 8 // 5 columns, 4 two-space separators
	total := widths.Ship + widths.State + widths.Task + widths.Claimed + widths.Action + separatorWidth

	if t.config.TerminalWidth <= 0 || total <= t.config.TerminalWidth {
		return widths
	}

	overflow := total - t.config.TerminalWidth
	if widths.Task-MinColumnWidths.Task > 0 {
		reduction := overflow
		if maxReduction := widths.Task - MinColumnWidths.Task; reduction > maxReduction {
			reduction = maxReduction
		}
		widths.Task -= reduction
	}

	return widths
}

// renderStateCellPlain creates the state cell content without ANSI color codes.
// Used for JSON output and width calculations.
func (t *StatusTable) renderStateCellPlain(state domain.ShipState) string {
	return ShipStateIcon(state) + " " + string(state)
}

// renderStateCellPadded renders the state cell with icon, color, and padding.
func (t *StatusTable) renderStateCellPadded(state domain.ShipState, width int) string {
	plainText := t.renderStateCellPlain(state)
	plainWidth := utf8.RuneCountInString(plainText)

	color := t.styles.ShipStateColors[state]
	styled := ShipStateIcon(state) + " " + lipgloss.NewStyle().Foreground(color).Render(string(state))

	if plainWidth >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-plainWidth)
}

// renderActionCellPlain returns the suggested action for a ship's state, or
// an em-dash if no action is needed.
func (t *StatusTable) renderActionCellPlain(state domain.ShipState) string {
	action := SuggestedShipAction(state)
	if action == "" {
		return "—"
	}
	if IsAttentionState(state) && !HasColorSupport() {
		return "(!) " + action
	}
	return action
}

// renderActionCellPadded renders the action cell with warning styling for
// attention states, plus padding.
func (t *StatusTable) renderActionCellPadded(state domain.ShipState, width int) string {
	plainText := t.renderActionCellPlain(state)
	plainWidth := utf8.RuneCountInString(plainText)

	styled := plainText
	if IsAttentionState(state) && HasColorSupport() {
		styled = ActionStyle().Render(SuggestedShipAction(state))
	}

	if plainWidth >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-plainWidth)
}
