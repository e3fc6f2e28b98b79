package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX saves rows to a formatted spreadsheet: bold headers, green fill
// on strong composite scores, red on weak ones and stretched P/E ratios.
func WriteXLSX(path, sheetName string, preferred []string, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return err
	}

	headers := UnionHeaders(preferred, rows)

	headerStyle := xlsx.NewStyle()
	headerStyle.Font.Bold = true
	headerStyle.Fill = *xlsx.NewFill("solid", "D3D3D3", "")
	headerStyle.ApplyFont = true
	headerStyle.ApplyFill = true

	greenStyle := xlsx.NewStyle()
	greenStyle.Fill = *xlsx.NewFill("solid", "C6EFCE", "")
	greenStyle.Font.Color = "006100"
	greenStyle.ApplyFont = true
	greenStyle.ApplyFill = true

	redStyle := xlsx.NewStyle()
	redStyle.Fill = *xlsx.NewFill("solid", "FFC7CE", "")
	redStyle.Font.Color = "9C0006"
	redStyle.ApplyFont = true
	redStyle.ApplyFill = true

	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetValue(h)
		cell.SetStyle(headerStyle)
	}

	scoreCol := indexOf(headers, "Final_Score")
	if scoreCol == -1 {
		scoreCol = indexOf(headers, "Fund_Score")
	}
	peCol := indexOf(headers, "PE_Ratio")

	for _, row := range rows {
		xr := sheet.AddRow()
		for i, h := range headers {
			cell := xr.AddCell()
			v, ok := row[h]
			if !ok || v == nil {
				continue
			}
			cell.SetValue(v)

			if num, isNum := toFloat(v); isNum {
				switch {
				case i == scoreCol && num > 0.7:
					cell.SetStyle(greenStyle)
				case i == scoreCol && num < 0.4:
					cell.SetStyle(redStyle)
				case i == peCol && num < 25:
					cell.SetStyle(greenStyle)
				case i == peCol && num > 50:
					cell.SetStyle(redStyle)
				}
			}
		}
	}

	return file.Save(path)
}

// ReadXLSX loads the first sheet into header-keyed string rows.
func ReadXLSX(path string) ([]string, []map[string]string, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) == 0 {
		return nil, nil, nil
	}

	sheet := file.Sheets[0]
	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.String())
	}

	rows := make([]map[string]string, 0, len(sheet.Rows)-1)
	for _, r := range sheet.Rows[1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for i, cell := range r.Cells {
			if i >= len(headers) {
				break
			}
			val := cell.String()
			if val != "" {
				empty = false
			}
			row[headers[i]] = val
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
