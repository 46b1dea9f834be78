package analysis

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
)

// PerfTable is the table the recorder backend writes into.
const PerfTable = "perf"

// PerfAnalyzerBackend is the interface that provides the service that can
// record performance data entries.
type PerfAnalyzerBackend interface {
	AddDataEntry(entry PerfAnalyzerEntry)
	Flush()
}

// CSVBackend is a PerfAnalyzerBackend that writes data entries as CSV.
type CSVBackend struct {
	csvWriter *csv.Writer
}

// NewCSVPerfAnalyzerBackend creates a backend that writes to w, starting with
// a header row.
func NewCSVPerfAnalyzerBackend(w io.Writer) *CSVBackend {
	p := &CSVBackend{
		csvWriter: csv.NewWriter(w),
	}

	header := []string{
		"Start", "End", "Where", "What", "EntryType", "Value", "Unit",
	}

	err := p.csvWriter.Write(header)
	if err != nil {
		panic(err)
	}

	return p
}

// AddDataEntry adds a data entry to the CSV file.
func (p *CSVBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	err := p.csvWriter.Write([]string{
		fmt.Sprintf("%.10f", entry.Start),
		fmt.Sprintf("%.10f", entry.End),
		entry.Where,
		entry.What,
		entry.EntryType,
		fmt.Sprintf("%.10f", entry.Value),
		entry.Unit,
	})
	if err != nil {
		panic(err)
	}
}

// Flush flushes the CSV writer.
func (p *CSVBackend) Flush() {
	p.csvWriter.Flush()
}

// PerfRow is how an entry is stored by the recorder backend. The column names
// avoid SQL keywords.
type PerfRow struct {
	PeriodStart float64
	PeriodEnd   float64
	Component   string
	Metric      string
	Kind        string
	Value       float64
	Unit        string
}

// RecorderBackend writes data entries into a table of a data recorder.
type RecorderBackend struct {
	recorder datarecording.DataRecorder
}

// NewRecorderPerfAnalyzerBackend creates the perf table in the recorder.
func NewRecorderPerfAnalyzerBackend(
	recorder datarecording.DataRecorder,
) *RecorderBackend {
	recorder.CreateTable(PerfTable, PerfRow{})

	return &RecorderBackend{
		recorder: recorder,
	}
}

// AddDataEntry buffers an entry in the recorder.
func (p *RecorderBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	p.recorder.InsertData(PerfTable, PerfRow{
		PeriodStart: float64(entry.Start),
		PeriodEnd:   float64(entry.End),
		Component:   entry.Where,
		Metric:      entry.What,
		Kind:        entry.EntryType,
		Value:       entry.Value,
		Unit:        entry.Unit,
	})
}

// Flush writes the buffered entries.
func (p *RecorderBackend) Flush() {
	p.recorder.Flush()
}
