package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kjannette/tariff-monitor/internal/models"
)

const maxCell = 48

// RenderTariffs writes the tariff table, the chart series and the status
// line for st.
func RenderTariffs(w io.Writer, st State[models.TariffEnvelope]) {
	env := st.Data
	rows := [][]string{{"Country", "Product", "Rate", "Change", "Trend", "Source"}}
	for _, r := range env.TariffData {
		rows = append(rows, []string{r.Country, r.Product, r.Rate, r.Change, trendArrow(r.Trend), r.Source})
	}
	fmt.Fprintln(w, "Tariff rates")
	writeTable(w, rows)

	if len(env.ChartData) > 0 {
		chart := [][]string{{"Month", "US", "China", "EU", "Mexico"}}
		for _, p := range env.ChartData {
			chart = append(chart, []string{
				p.Month,
				fmt.Sprintf("%.2f", p.US),
				fmt.Sprintf("%.2f", p.China),
				fmt.Sprintf("%.2f", p.EU),
				fmt.Sprintf("%.2f", p.Mexico),
			})
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Average tariff trend")
		writeTable(w, chart)
	}
	writeStatus(w, env.Meta, st)
}

// RenderNews writes the news cards and the status line for st.
func RenderNews(w io.Writer, st State[models.NewsEnvelope]) {
	env := st.Data
	rows := [][]string{{"When", "Source", "Headline"}}
	for _, n := range env.News {
		rows = append(rows, []string{n.Time, n.Source, n.Title})
	}
	fmt.Fprintln(w, "Trade news")
	writeTable(w, rows)
	for _, n := range env.News {
		if n.URL != "" && n.URL != "#" {
			fmt.Fprintf(w, "  %s  %s\n", n.ID, n.URL)
		}
	}
	writeStatus(w, env.Meta, st)
}

func trendArrow(t models.Trend) string {
	switch t {
	case models.TrendUp:
		return "▲ up"
	case models.TrendDown:
		return "▼ down"
	default:
		return "● stable"
	}
}

func writeStatus[T any](w io.Writer, m models.Meta, st State[T]) {
	line := fmt.Sprintf("status=%s sources=%s", m.Status, strings.Join(m.Sources, ", "))
	if !m.LastUpdated.IsZero() {
		line += " updated=" + m.LastUpdated.Format("2006-01-02 15:04:05Z07:00")
	}
	if st.Loading {
		line += " (loading)"
	}
	fmt.Fprintln(w, line)
	if st.Error != "" {
		fmt.Fprintf(w, "error: %s\n", st.Error)
	}
}

// writeTable pads cells to their display width so wide runes line up.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			row[i] = runewidth.Truncate(row[i], maxCell, "…")
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	for r, row := range rows {
		var sb strings.Builder
		sb.WriteString("|")
		for i, wd := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, wd))
			sb.WriteString(" |")
		}
		fmt.Fprintln(w, sb.String())

		if r == 0 {
			sb.Reset()
			sb.WriteString("|")
			for _, wd := range widths {
				sb.WriteString(" " + strings.Repeat("-", wd) + " |")
			}
			fmt.Fprintln(w, sb.String())
		}
	}
}
