// Package plot draws normalized value series as PNG line charts.
package plot

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/etnz/folio"
	"github.com/vicanso/go-charts/v2"
)

// YAxisName is the legend of the value axis.
const YAxisName = "Normalized Price"

// Compare renders series, each divided by its first value, into a PNG file at path.
func Compare(path, title string, series ...folio.Series) error {
	img, err := Render(title, series...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("cannot write chart %q: %w", path, err)
	}
	return nil
}

// Render returns the PNG image comparing series, normalized by their first value.
//
// Series share the dates of the first one; longer series are truncated.
// Missing values carry the previous point.
func Render(title string, series ...folio.Series) ([]byte, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to plot")
	}
	n := series[0].Len()
	for _, s := range series[1:] {
		n = min(n, s.Len())
	}
	if n < 2 {
		return nil, errors.New("not enough data points")
	}

	labels := make([]string, n)
	for i := range labels {
		labels[i] = series[0].Dates[i].String()
	}
	values := make([][]float64, len(series))
	names := make([]string, len(series))
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for k, s := range series {
		names[k] = s.Name
		values[k] = fill(s.Normalize().Values[:n])
		for _, v := range values[k] {
			yMin, yMax = math.Min(yMin, v), math.Max(yMax, v)
		}
	}
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 0.01
	}
	yMin, yMax = yMin-pad, yMax+pad

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title, YAxisName),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: min(n-1, 8)}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// fill replaces NaN with the previous value, or 1 at the start.
func fill(values []float64) []float64 {
	last := 1.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = last
			continue
		}
		last = v
	}
	return values
}
