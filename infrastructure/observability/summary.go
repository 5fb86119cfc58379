package observability

import (
	"sort"

	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Sample is one aggregated metric value.
type Sample struct {
	Name  string
	Value float64
}

// Summarize flattens collected metrics into one total per instrument:
// sums are added up, histograms report their observation count.
func Summarize(rm metricdata.ResourceMetrics) []Sample {
	var out []Sample
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			var v float64
			switch d := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range d.DataPoints {
					v += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range d.DataPoints {
					v += dp.Value
				}
			case metricdata.Histogram[int64]:
				for _, dp := range d.DataPoints {
					v += float64(dp.Count)
				}
			case metricdata.Histogram[float64]:
				for _, dp := range d.DataPoints {
					v += float64(dp.Count)
				}
			default:
				continue
			}
			out = append(out, Sample{Name: m.Name, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
