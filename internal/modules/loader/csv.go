package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// record is one CSV row with access by column name.
type record struct {
	columns map[string]int
	fields  []string
}

// readTable reads a whole CSV file into named records. The first row is the
// header. Short rows are tolerated; missing cells read as empty.
func readTable(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.TrimSpace(name)] = i
	}

	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, record{columns: columns, fields: row})
	}
	return records, nil
}

// str returns the trimmed cell value, or "" when the column is absent.
func (r record) str(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

// missingNumeric are cell values that mean "no number here" in vendor
// exports.
var missingNumeric = map[string]bool{
	"": true, "#N/A": true, "N/A": true, "NA": true, "NAN": true, "NONE": true, "--": true,
}

// float parses the cell as a float, returning nil for missing values.
func (r record) float(column string) *float64 {
	raw := r.str(column)
	if missingNumeric[strings.ToUpper(raw)] {
		return nil
	}
	// Tolerate thousands separators and percent signs from spreadsheet
	// exports.
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSuffix(raw, "%")

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// floatOr parses the cell as a float with a default for missing values.
func (r record) floatOr(column string, def float64) float64 {
	if v := r.float(column); v != nil {
		return *v
	}
	return def
}

// dateFormats accepted for the internal rating date column.
var dateFormats = []string{"2006-01-02", "02/01/2006", "2006-01-02 15:04:05"}

// date parses the cell as a date; the zero time means unparseable.
func (r record) date(column string) time.Time {
	raw := r.str(column)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
