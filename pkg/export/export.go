// Package export writes the dispatch log and the end-of-run report to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	"github.com/kilianp07/ambulance-dispatch/core/model"
)

var logHeader = []string{
	"tick", "vehicle_id", "call_id", "patient_node", "hospital_node",
	"cost_to_patient", "available_at", "station",
}

// WriteLogJSON writes the dispatch log to w in JSON format.
func WriteLogJSON(w io.Writer, log []model.DispatchRecord) error {
	if log == nil {
		log = []model.DispatchRecord{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(log)
}

// WriteLogCSV writes the dispatch log to w in CSV format, one row per
// dispatch in log order.
func WriteLogCSV(w io.Writer, log []model.DispatchRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(logHeader); err != nil {
		return err
	}
	for _, r := range log {
		rec := []string{
			strconv.Itoa(r.Tick),
			strconv.Itoa(int(r.VehicleID)),
			strconv.Itoa(r.CallID),
			string(r.Patient),
			string(r.Hospital),
			strconv.FormatFloat(r.CostToPatient, 'f', -1, 64),
			strconv.FormatFloat(r.AvailableAt, 'f', -1, 64),
			string(r.Station),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportJSON writes the end-of-run report to w as indented JSON.
func WriteReportJSON(w io.Writer, r dispatch.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteLogFile writes the dispatch log to path, as CSV when the extension is
// .csv and as JSON otherwise.
func WriteLogFile(path string, log []model.DispatchRecord) error {
	return writeFile(path, func(w io.Writer) error {
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			return WriteLogCSV(w, log)
		}
		return WriteLogJSON(w, log)
	})
}

// WriteReportFile writes the report to path as JSON.
func WriteReportFile(path string, r dispatch.Report) error {
	return writeFile(path, func(w io.Writer) error { return WriteReportJSON(w, r) })
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
