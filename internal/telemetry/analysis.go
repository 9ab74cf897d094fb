package telemetry

import (
	"math"
)

// Summary describes the step response recorded in a series of samples
type Summary struct {
	Samples int `json:"samples"`
	// last recorded measurement
	Final float64 `json:"final"`
	// setpoint minus measurement of the last sample
	FinalError float64 `json:"finalError"`
	// highest recorded measurement
	Peak float64 `json:"peak"`
	// overshoot of the peak beyond the last setpoint, relative to the setpoint, 0 if there is none
	Overshoot float64 `json:"overshoot"`
	// time after which every sample stayed within tolerance of its setpoint
	SettleTime float64 `json:"settleTime"`
	Settled    bool    `json:"settled"`
}

// Summarize computes a Summary of the given samples, which must be ordered by time
func Summarize(samples []Sample, tolerance float64) Summary {
	summary := Summary{
		Samples: len(samples),
	}
	if len(samples) == 0 {
		return summary
	}

	last := samples[len(samples)-1]
	summary.Final = last.Measurement
	summary.FinalError = last.Setpoint - last.Measurement

	summary.Peak = math.Inf(-1)
	for _, s := range samples {
		summary.Peak = math.Max(summary.Peak, s.Measurement)
	}
	if last.Setpoint != 0 && summary.Peak > last.Setpoint {
		summary.Overshoot = (summary.Peak - last.Setpoint) / math.Abs(last.Setpoint)
	}

	summary.SettleTime, summary.Settled = SettleTime(samples, tolerance)
	return summary
}

// SettleTime returns the timestamp of the first sample after which the
// measurement never left the tolerance band around the setpoint again.
func SettleTime(samples []Sample, tolerance float64) (float64, bool) {
	settledIdx := -1
	for i := len(samples) - 1; i >= 0; i-- {
		s := samples[i]
		if math.Abs(s.Setpoint-s.Measurement) > tolerance {
			break
		}
		settledIdx = i
	}
	if settledIdx < 0 {
		return 0, false
	}
	return samples[settledIdx].Timestamp, true
}

// Column extracts a single value of every sample
func Column(samples []Sample, value func(s Sample) float64) []float64 {
	result := make([]float64, len(samples))
	for i, s := range samples {
		result[i] = value(s)
	}
	return result
}
