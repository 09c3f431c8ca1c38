package ledgerservice

import (
	"bytes"
	"context"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("1b1f24")
	chartBar        = drawing.ColorFromHex("d4a72c")
	chartText       = drawing.ColorFromHex("e6edf3")
)

// StandingsChart renders the ranked cohort totals as a PNG bar chart.
func (s *LedgerService) StandingsChart(ctx context.Context) ([]byte, error) {
	standings, err := s.CohortStandings(ctx)
	if err != nil {
		return nil, err
	}
	return renderStandingsChart(standings)
}

func renderStandingsChart(standings []ledgerdomain.CohortStanding) ([]byte, error) {
	top := 0
	for _, st := range standings {
		top = max(top, st.Points)
	}
	if top == 0 {
		return renderNoDataPlaceholder("No points scored yet")
	}

	bars := make([]chart.Value, len(standings))
	for i, st := range standings {
		bars[i] = chart.Value{
			Label: st.CohortName,
			Value: float64(st.Points),
			Style: chart.Style{
				FillColor:   chartBar,
				StrokeColor: chartBar,
			},
		}
	}

	graph := chart.BarChart{
		Title:      "Cohort standings",
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      800,
		Height:     400,
		BarWidth:   60,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			// go-chart refuses a zero-height range, so pin the floor at 0.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: chartBackground},
		Canvas:     chart.Style{FillColor: chartBackground},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
