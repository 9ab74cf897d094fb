package telemetry

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/markusressel/pid2go/internal/util"
)

var csvHeader = []string{"timestamp", "setpoint", "measurement", "control"}

// WriteCSV writes the given samples as CSV, including a header row
func WriteCSV(w io.Writer, samples []Sample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.Timestamp),
			formatFloat(s.Setpoint),
			formatFloat(s.Measurement),
			formatFloat(s.Control),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportCSV atomically writes the given samples to a CSV file at path
func ExportCSV(path string, samples []Sample) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		return err
	}
	return util.WriteFileAtomic(path, buf.Bytes())
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
