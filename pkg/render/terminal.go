package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Terminal styles.
var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
	BorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Terminal writes one table to w as a bordered text table, headed by the
// table title and the page number.
func Terminal(w io.Writer, t Table, page int) error {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{r.Cells[0], r.Cells[1]})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		Headers(t.Headers[0], t.Headers[1]).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})

	title := TitleStyle.Render(fmt.Sprintf("%s (page %d, %d total)", t.Title, page, t.Total))
	if _, err := fmt.Fprintln(w, title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// TerminalError writes a user-visible error line to w.
func TerminalError(w io.Writer, message string) error {
	_, err := fmt.Fprintln(w, ErrorStyle.Render(message))
	return err
}
