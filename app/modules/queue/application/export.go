package queueservice

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

const archiveSheet = "Archive"

var archiveHeader = []any{"Round", "Sequence", "Archived At", "Position", "Label", "Fast Track"}

// BuildArchiveWorkbook writes one row per archived entry.
func BuildArchiveWorkbook(rounds []queuedomain.Round) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), archiveSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(archiveSheet, "A1", &archiveHeader); err != nil {
		return nil, err
	}

	line := 2
	for _, r := range rounds {
		archivedAt := ""
		if r.ArchivedAt != nil {
			archivedAt = r.ArchivedAt.UTC().Format(time.RFC3339)
		}
		for i, e := range r.Entries {
			row := []any{r.ID.String(), r.Sequence, archivedAt, i + 1, e.Label, e.FastTrack}
			if err := f.SetSheetRow(archiveSheet, fmt.Sprintf("A%d", line), &row); err != nil {
				return nil, err
			}
			line++
		}
	}

	if err := f.SetPanes(archiveSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	chartBackground = drawing.ColorFromHex("f8f7f2")
	chartBar        = drawing.ColorFromHex("2f5d50")
	chartText       = drawing.ColorFromHex("1f2421")
)

// RenderArchiveChart draws a bar per day with the number of rounds archived
// on it, oldest day first. Without data a single empty bar is drawn.
func RenderArchiveChart(rounds []queuedomain.Round) ([]byte, error) {
	perDay := make(map[string]int)
	for _, r := range rounds {
		if r.ArchivedAt == nil {
			continue
		}
		perDay[r.ArchivedAt.UTC().Format(time.DateOnly)]++
	}

	days := make([]string, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	slices.Sort(days)

	title := "Archived rounds per day"
	if len(days) == 0 {
		title = "No archived rounds"
		days = append(days, "-")
	}

	bars := make([]chart.Value, 0, len(days))
	peak := 0
	for _, d := range days {
		peak = max(peak, perDay[d])
		bars = append(bars, chart.Value{
			Label: d,
			Value: float64(perDay[d]),
			Style: chart.Style{FillColor: chartBar, StrokeColor: chartBar},
		})
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      max(800, len(bars)*60+160),
		Height:     400,
		BarWidth:   40,
		Background: chart.Style{FillColor: chartBackground},
		Canvas:     chart.Style{FillColor: chartBackground},
		XAxis:      chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak + 1)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
