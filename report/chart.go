/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/humaidq/medcenter/db"
)

// ParameterTrendChart renders an HTML line chart of a parameter's history
// with the normal range drawn as dashed lines.
func ParameterTrendChart(patientName string, ref db.ParameterReference, points []db.ParameterPoint) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoDataPoints, ref.Name)
	}

	xAxis := make([]string, 0, len(points))
	yData := make([]opts.LineData, 0, len(points))
	dataMin, dataMax := points[0].Number, points[0].Number

	for _, p := range points {
		xAxis = append(xAxis, p.ResultDate.Format(DateLayout))
		yData = append(yData, opts.LineData{Value: p.Number, Name: p.Value})

		if p.Number < dataMin {
			dataMin = p.Number
		}
		if p.Number > dataMax {
			dataMax = p.Number
		}
	}

	yAxisMin, yAxisMax := chartBounds(ref, dataMin, dataMax)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: ref.Name,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    ref.Name,
			Subtitle: patientName,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: ref.Unit,
			Min:  yAxisMin,
			Max:  yAxisMax,
		}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
		}),
	}

	var markLineItems []interface{}
	if ref.NormalMin != nil {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{
			Name:  "Мин. норма",
			YAxis: *ref.NormalMin,
		})
	}
	if ref.NormalMax != nil {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{
			Name:  "Макс. норма",
			YAxis: *ref.NormalMax,
		})
	}

	if len(markLineItems) > 0 {
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: markLineItems,
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	line.SetXAxis(xAxis).
		AddSeries(ref.Name, yData).
		SetSeriesOptions(seriesOpts...)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	return buf.String(), nil
}

// chartBounds widens the y axis so both the data and the normal range are
// visible. Without both bounds the axis is left to the chart library.
func chartBounds(ref db.ParameterReference, dataMin, dataMax float64) (interface{}, interface{}) {
	if !ref.HasBounds() {
		return nil, nil
	}

	padding := (*ref.NormalMax - *ref.NormalMin) * 0.1
	minVal := *ref.NormalMin - padding
	maxVal := *ref.NormalMax + padding

	if dataMin < minVal {
		minVal = dataMin - (dataMax-dataMin)*0.05
	}
	if dataMax > maxVal {
		maxVal = dataMax + (dataMax-dataMin)*0.05
	}

	return minVal, maxVal
}
