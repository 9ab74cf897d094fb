package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func createSamples(measurements ...float64) []Sample {
	var samples []Sample
	for i, m := range measurements {
		samples = append(samples, Sample{
			Timestamp:   float64(i + 1),
			Setpoint:    1.0,
			Measurement: m,
		})
	}
	return samples
}

func TestSettleTime(t *testing.T) {
	// GIVEN
	samples := createSamples(0.2, 0.9, 1.05, 0.99, 1.01, 1.0)

	// WHEN
	settleTime, settled := SettleTime(samples, 0.02)

	// THEN
	assert.True(t, settled)
	assert.Equal(t, 4.0, settleTime)
}

func TestSettleTime_NotSettled(t *testing.T) {
	// GIVEN
	samples := createSamples(0.2, 1.0, 0.5)

	// WHEN
	_, settled := SettleTime(samples, 0.02)
	_, settledEmpty := SettleTime(nil, 0.02)

	// THEN
	assert.False(t, settled)
	assert.False(t, settledEmpty)
}

func TestSummarize(t *testing.T) {
	// GIVEN
	samples := createSamples(0.2, 0.9, 1.2, 0.95, 1.0)

	// WHEN
	summary := Summarize(samples, 0.1)

	// THEN
	assert.Equal(t, 5, summary.Samples)
	assert.Equal(t, 1.0, summary.Final)
	assert.Equal(t, 0.0, summary.FinalError)
	assert.Equal(t, 1.2, summary.Peak)
	assert.InDelta(t, 0.2, summary.Overshoot, 1e-12)
	assert.True(t, summary.Settled)
	assert.Equal(t, 4.0, summary.SettleTime)
}

func TestSummarize_Empty(t *testing.T) {
	// WHEN
	summary := Summarize(nil, 0.1)

	// THEN
	assert.Equal(t, Summary{}, summary)
}

func TestColumn(t *testing.T) {
	// GIVEN
	samples := createSamples(0.1, 0.2)

	// WHEN
	timestamps := Column(samples, func(s Sample) float64 { return s.Timestamp })

	// THEN
	assert.Equal(t, []float64{1, 2}, timestamps)
}
