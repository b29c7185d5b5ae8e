package events

// #region imports
import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// #endregion imports

// #region columns

// Required header columns of a behavioral events table.
const (
	colTask       = "task"
	colEvent      = "event"
	colInfo       = "info"
	colTime       = "time_s"
	colRecordTime = "record_time_s"
)

// naValue is the missing-data marker used by the acquisition software.
const naValue = "n/a"

// #endregion columns

// #region read-log

// ReadLog parses a tab-separated behavioral event log. The first row must be
// a header naming at least the task, event, info, time_s and record_time_s
// columns; extra columns are ignored. Cells holding the "n/a" marker parse
// as an empty string (text columns) or NaN (time columns).
func ReadLog(r io.Reader) ([]RawEvent, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("event log is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range []string{colTask, colEvent, colInfo, colTime, colRecordTime} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("event log is missing column %q", name)
		}
	}

	var rows []RawEvent
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		timeS, err := parseTime(field(rec, idx[colTime]))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %s: %w", line, colTime, err)
		}
		recTimeS, err := parseTime(field(rec, idx[colRecordTime]))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %s: %w", line, colRecordTime, err)
		}

		name := field(rec, idx[colEvent])
		rows = append(rows, RawEvent{
			Task:         textOrEmpty(field(rec, idx[colTask])),
			Event:        ParseEventType(name),
			RawEventName: name,
			Info:         textOrEmpty(field(rec, idx[colInfo])),
			TimeS:        timeS,
			RecordTimeS:  recTimeS,
		})
	}
	return rows, nil
}

// ReadLogFile opens and parses the event log at path.
func ReadLogFile(path string) ([]RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	rows, err := ReadLog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// #endregion read-log

// #region cell-parsing

// field returns the i-th cell, tolerating short rows (trailing empty cells
// are not always written out).
func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func textOrEmpty(s string) string {
	if s == naValue {
		return ""
	}
	return s
}

func parseTime(s string) (float64, error) {
	if s == "" || s == naValue {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	return v, nil
}

// #endregion cell-parsing
