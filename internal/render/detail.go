package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// DetailBuilder builds key-value detail blocks with a fixed-width label
// column.
type DetailBuilder struct {
	b          strings.Builder
	labelStyle lipgloss.Style
	titleStyle lipgloss.Style
}

func newDetailBuilder(labelWidth int, th Theme) *DetailBuilder {
	return &DetailBuilder{
		labelStyle: th.Label.Width(labelWidth),
		titleStyle: th.Title,
	}
}

// Row writes a labeled row. Empty values are shown as "-".
func (d *DetailBuilder) Row(label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(&d.b, "  %s %s\n", d.labelStyle.Render(label), value)
}

// Section writes a heading like "── title ──────...".
func (d *DetailBuilder) Section(title string) {
	pad := max(40-len(title), 4)
	heading := fmt.Sprintf("── %s %s", title, strings.Repeat("─", pad))
	d.b.WriteString(d.titleStyle.Render(heading) + "\n")
}

func (d *DetailBuilder) String() string {
	return d.b.String()
}
