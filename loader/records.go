package loader

import (
	"errors"
	"strings"

	"insyn-search/models"
)

// Separator splits fields in the registry export.
const Separator = ";"

// ErrNoHeader is returned when an export has no header line to map rows against.
var ErrNoHeader = errors.New("export has no header line")

// Stats describes rows whose field count differed from the header.
type Stats struct {
	Rows      int
	ShortRows int
	LongRows  int
}

// Mismatched reports whether any row was truncated while zipping.
func (s Stats) Mismatched() bool {
	return s.ShortRows > 0 || s.LongRows > 0
}

// ParseRecords reshapes a normalized export into one record per line after the
// header. Fields are zipped positionally against the header and truncated to
// whichever of the two is shorter. Empty values are dropped, so a blank line
// yields an empty record.
func ParseRecords(text string) ([]models.Record, Stats, error) {
	var stats Stats

	lines := splitLines(text)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, stats, ErrNoHeader
	}

	headers := strings.Split(lines[0], Separator)

	records := make([]models.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := strings.Split(line, Separator)
		switch {
		case len(row) < len(headers):
			stats.ShortRows++
		case len(row) > len(headers):
			stats.LongRows++
		}

		n := min(len(row), len(headers))
		record := make(models.Record, n)
		for i := 0; i < n; i++ {
			record[headers[i]] = row[i]
		}
		// Dropped after zipping so a repeated column name keeps its last value.
		for k, v := range record {
			if v == "" {
				delete(record, k)
			}
		}
		records = append(records, record)
	}
	stats.Rows = len(records)

	return records, stats, nil
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
