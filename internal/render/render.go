// Package render turns coordinator views into markdown and prints it to the
// terminal through glamour.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"spendwise/internal/core"
)

// DefaultWidth is the word wrap used when the terminal size is unknown.
const DefaultWidth = 100

// Renderer formats views in one display currency.
type Renderer struct {
	currency string
	payer    string
}

func New(currency, defaultPayer string) *Renderer {
	if currency == "" {
		currency = core.DefaultCurrency
	}
	if defaultPayer == "" {
		defaultPayer = "User"
	}
	return &Renderer{currency: currency, payer: defaultPayer}
}

// Money formats v in the display currency, rounded to its minor unit.
func (r *Renderer) Money(v float64) string {
	return core.FormatAmount(v, r.currency)
}

// Print writes markdown to w. A terminal gets glamour styling; anything else
// gets the raw markdown so output stays pipeable.
func Print(w io.Writer, markdown string) error {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(w, markdown)
		return err
	}

	width := DefaultWidth
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 20 {
		width = cols - 4
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

const barWidth = 20

// bar draws pct (0..100) as a fixed width block bar.
func bar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct/100*barWidth + 0.5)
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "`"
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func banner(w io.Writer, errMsg, notice string) {
	if errMsg != "" {
		fmt.Fprintf(w, "> **Error:** %s\n\n", errMsg)
	}
	if notice != "" {
		fmt.Fprintf(w, "> %s\n\n", notice)
	}
}

func table(w io.Writer, header []string, align string, rows [][]string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprint(w, "|")
	for _, a := range align {
		if a == 'r' {
			fmt.Fprint(w, "---:|")
		} else {
			fmt.Fprint(w, ":---|")
		}
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
	fmt.Fprintln(w)
}
