package stats

import (
	"fmt"

	"github.com/lab-portal/backend/internal/models"
)

// TimelineBar is the horizontal geometry of one session on its user's
// track, as percentages of the overall span.
type TimelineBar struct {
	IP           string  `json:"ip"`
	Label        string  `json:"label"`
	LeftPercent  float64 `json:"left"`
	WidthPercent float64 `json:"width"`
}

// TimelineRow groups one user's bars.
type TimelineRow struct {
	User string        `json:"user"`
	Bars []TimelineBar `json:"bars"`
}

// BarValue is one row of a labelled bar chart, with the fill width as a
// percentage of the largest value.
type BarValue struct {
	Label        string  `json:"label"`
	Value        float64 `json:"value"`
	WidthPercent float64 `json:"width"`
}

// Timeline lays the filtered sessions out on a shared time axis:
// position is (t_in − minTime) / span, width is duration / span, where
// minTime = min(t_in) and span = max(t_out) − min(t_in). A degenerate
// span of zero (zero or one instantaneous session) renders full-width
// bars instead of dividing by zero.
func Timeline(rows []models.SessionRow) []TimelineRow {
	if len(rows) == 0 {
		return nil
	}

	minTime := rows[0].TimeIn
	maxTime := rows[0].TimeOut
	for _, row := range rows[1:] {
		if row.TimeIn.Before(minTime) {
			minTime = row.TimeIn
		}
		if row.TimeOut.After(maxTime) {
			maxTime = row.TimeOut
		}
	}
	span := maxTime.Sub(minTime)

	byUser := make(map[string]int)
	out := make([]TimelineRow, 0, 4)
	for _, row := range rows {
		bar := TimelineBar{
			IP:    row.IP,
			Label: fmt.Sprintf("%s - %s", row.TimeIn.Format("02 Jan 2006, 03:04 PM"), row.TimeOut.Format("02 Jan 2006, 03:04 PM")),
		}
		if span > 0 {
			bar.LeftPercent = float64(row.TimeIn.Sub(minTime)) / float64(span) * 100
			bar.WidthPercent = float64(row.TimeOut.Sub(row.TimeIn)) / float64(span) * 100
		} else {
			bar.LeftPercent = 0
			bar.WidthPercent = 100
		}

		idx, ok := byUser[row.User]
		if !ok {
			idx = len(out)
			byUser[row.User] = idx
			out = append(out, TimelineRow{User: row.User})
		}
		out[idx].Bars = append(out[idx].Bars, bar)
	}
	return out
}

// Bars scales a labelled value list against its maximum, with a floor
// of 1 on the divisor so an all-zero chart stays flat instead of NaN.
func Bars(labels []string, values []float64) []BarValue {
	max := 1.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	out := make([]BarValue, len(labels))
	for i, label := range labels {
		out[i] = BarValue{
			Label:        label,
			Value:        values[i],
			WidthPercent: values[i] / max * 100,
		}
	}
	return out
}

// UsageByDayBars orders the weekday buckets Monday through Sunday,
// filling missing days with zero.
func UsageByDayBars(usage map[string]int) []BarValue {
	labels := make([]string, len(models.Weekdays))
	values := make([]float64, len(models.Weekdays))
	for i, day := range models.Weekdays {
		labels[i] = day
		values[i] = float64(usage[day])
	}
	return Bars(labels, values)
}
