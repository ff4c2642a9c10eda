package chunking

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// CSV limits.
const (
	// CSVSizeCeiling is the content length at and above which only a prefix is read.
	CSVSizeCeiling = 10_000_000
	// CSVLargeRows is the data-row count above which a CSV is summarized as large.
	CSVLargeRows = 1000
	// CSVBytesPerRow is the assumed average row width for estimating row counts
	// of oversized files. Estimates are approximate.
	CSVBytesPerRow = 100

	csvPreviewChars   = 1000
	csvSampleRows     = 10
	csvLargeSample    = 20
	csvVeryLargeRows  = 5
	csvUnknownName    = "unknown.csv"
	csvStatisticsKind = "Large dataset suitable for analysis"
)

var numbers = message.NewPrinter(language.English)

// CSV summarizes a whole CSV document into header, sample and statistics
// chunks. Any failure degrades to a single preview chunk.
func CSV(content string, meta chunk.Metadata) []chunk.Chunk {
	return csvWithCeiling(content, meta, CSVSizeCeiling)
}

func csvWithCeiling(content string, meta chunk.Metadata, ceiling int) (out []chunk.Chunk) {
	name := meta.String(chunk.KeyFilename)
	if name == "" {
		name = csvUnknownName
	}
	if len(content) >= ceiling {
		return veryLargeCSV(content, name, meta)
	}

	defer func() {
		if r := recover(); r != nil {
			out = []chunk.Chunk{chunk.New(
				fmt.Sprintf("CSV File: %s\nContent preview:\n%s...", name, prefix(content, csvPreviewChars)),
				chunk.TypeCSVFallback, meta, chunk.Metadata{chunk.KeyProcessingError: fmt.Sprint(r)},
			)}
		}
	}()

	lines := csvLines(strings.TrimSpace(content))
	if len(lines) == 0 {
		return nil
	}
	header, rows := lines[0], lines[1:]
	columns := columnCount(header)

	if len(rows) <= CSVLargeRows {
		out = append(out, chunk.New(
			fmt.Sprintf("CSV File: %s\nColumns: %s\nTotal Rows: %d", name, header, len(rows)),
			chunk.TypeCSVHeader, meta, chunk.Metadata{
				chunk.KeyRowCount:    len(rows),
				chunk.KeyColumns:     header,
				chunk.KeyColumnCount: columns,
			}))
		if sample := head(rows, csvSampleRows); len(sample) > 0 {
			out = append(out, chunk.New(
				fmt.Sprintf("Sample data from %s:\n%s\n%s", name, header, strings.Join(sample, "\n")),
				chunk.TypeCSVSample, meta, chunk.Metadata{chunk.KeySampleSize: len(sample)}))
		}
		return out
	}

	out = append(out, chunk.New(
		fmt.Sprintf("Large CSV File: %s\nColumns: %s\nTotal Rows: %d", name, header, len(rows)),
		chunk.TypeCSVHeaderLarge, meta, chunk.Metadata{
			chunk.KeyRowCount:    len(rows),
			chunk.KeyColumns:     header,
			chunk.KeyColumnCount: columns,
		}))
	sample := head(rows, csvLargeSample)
	out = append(out, chunk.New(
		fmt.Sprintf("Sample from %s (first %d rows):\n%s\n%s", name, csvLargeSample, header, strings.Join(sample, "\n")),
		chunk.TypeCSVSampleLarge, meta, chunk.Metadata{chunk.KeySampleSize: len(sample)}))

	size, ok := meta.Int(chunk.KeyFileSize)
	if !ok {
		size = len(content)
	}
	stats := numbers.Sprintf("Statistics for %s:\n- Total records: %d\n- Columns: %d\n- File size: %d bytes\n- Data type: %s\n",
		name, len(rows), columns, size, csvStatisticsKind)
	out = append(out, chunk.New(stats, chunk.TypeCSVStatistics, meta, chunk.Metadata{chunk.KeyIsLargeDataset: true}))
	return out
}

// veryLargeCSV reads only a prefix and estimates the row count from size.
func veryLargeCSV(content, name string, meta chunk.Metadata) (out []chunk.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			out = []chunk.Chunk{chunk.New(
				numbers.Sprintf("Large CSV File: %s\nFile Size: %d bytes\nProcessing limited due to size.", name, len(content)),
				chunk.TypeCSVLargeFallback, meta, chunk.Metadata{
					chunk.KeyProcessingError: fmt.Sprint(r),
					chunk.KeyFileSizeBytes:   len(content),
				})}
		}
	}()

	lines := csvLines(prefix(content, csvPreviewChars))
	header := lines[0]
	estimated := len(content) / CSVBytesPerRow

	out = append(out, chunk.New(
		numbers.Sprintf("Very Large CSV File: %s\nColumns: %s\nEstimated Rows: ~%d\nFile Size: %d bytes\n"+
			"Note: This is a large dataset - only header and sample processed for performance.",
			name, header, estimated, len(content)),
		chunk.TypeCSVHeaderVeryLarge, meta, chunk.Metadata{
			chunk.KeyEstimatedRows:  estimated,
			chunk.KeyColumns:        header,
			chunk.KeyColumnCount:    columnCount(header),
			chunk.KeyFileSizeBytes:  len(content),
			chunk.KeyIsLargeDataset: true,
		}))

	if sample := head(lines[1:], csvVeryLargeRows); len(sample) > 0 {
		out = append(out, chunk.New(
			numbers.Sprintf("Sample from large CSV %s:\n%s\n%s\n\n... (File contains ~%d total rows)",
				name, header, strings.Join(sample, "\n"), estimated),
			chunk.TypeCSVSampleVeryLarge, meta, chunk.Metadata{
				chunk.KeySampleSize:     len(sample),
				chunk.KeyIsLargeDataset: true,
			}))
	}
	return out
}

func csvLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func columnCount(header string) int {
	if header == "" {
		return 0
	}
	return len(strings.Split(header, ","))
}

func head(rows []string, n int) []string {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// prefix cuts s to at most n bytes without splitting a rune.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
