package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

const (
	csvSampleRows   = 5
	excelSampleRows = 3
)

func summarizeCSV(text string) (string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("parse csv: no columns to parse")
	}

	header, rows := records[0], records[1:]
	parts := []string{
		"# CSV Data File",
		fmt.Sprintf("Rows: %d", len(rows)),
		fmt.Sprintf("Columns: %d", len(header)),
		"",
		"## Schema",
		"Columns: " + strings.Join(header, ", "),
		"",
		"Data types:\n" + columnTypes(header, rows),
		"",
		fmt.Sprintf("## Sample Data (first %d rows)", csvSampleRows),
		renderTable(header, head(rows, csvSampleRows)),
	}
	return strings.Join(parts, "\n"), nil
}

func summarizeExcel(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	parts := []string{"# Excel File"}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		var header []string
		if len(rows) > 0 {
			header, rows = rows[0], rows[1:]
		}
		parts = append(parts,
			"## Sheet: "+sheet,
			fmt.Sprintf("Rows: %d", len(rows)),
			fmt.Sprintf("Columns: %d", len(header)),
			"Columns: "+strings.Join(header, ", "),
			"",
			fmt.Sprintf("### Sample Data (first %d rows)", excelSampleRows),
			renderTable(header, head(rows, excelSampleRows)),
			"",
		)
	}
	return strings.Join(parts, "\n"), nil
}

// columnTypes infers int64, float64, bool or object per column, one line each.
func columnTypes(header []string, rows [][]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for i, name := range header {
		fmt.Fprintf(w, "%s\t%s\n", name, inferType(rows, i))
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

func inferType(rows [][]string, col int) string {
	isInt, isFloat, isBool, seen := true, true, true, false
	for _, row := range rows {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		seen = true
		v := strings.TrimSpace(row[col])
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
		}
		if lv := strings.ToLower(v); lv != "true" && lv != "false" {
			isBool = false
		}
	}
	switch {
	case !seen:
		return "object"
	case isInt:
		return "int64"
	case isFloat:
		return "float64"
	case isBool:
		return "bool"
	default:
		return "object"
	}
}

func renderTable(header []string, rows [][]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")
	for _, row := range rows {
		cells := make([]string, len(header))
		copy(cells, row)
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

func head(rows [][]string, n int) [][]string {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
