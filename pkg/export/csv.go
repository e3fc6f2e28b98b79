package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// UnionHeaders merges the preferred column order with any extra keys found in
// the rows. Consumers tolerate column supersets, so new fields are appended
// rather than rejected; extras are sorted for a stable layout.
func UnionHeaders(preferred []string, rows []map[string]interface{}) []string {
	headers := make([]string, 0, len(preferred))
	seen := make(map[string]bool, len(preferred))
	for _, h := range preferred {
		headers = append(headers, h)
		seen[h] = true
	}

	var extras []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	return append(headers, extras...)
}

// WriteCSV saves rows as a flat CSV table with union-of-keys headers.
func WriteCSV(path string, preferred []string, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	headers := UnionHeaders(preferred, rows)

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := row[h]; ok && v != nil {
				record[i] = formatValue(v)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a CSV table into header-keyed rows. Missing files yield an
// empty table, not an error.
func ReadCSV(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case float32:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}
