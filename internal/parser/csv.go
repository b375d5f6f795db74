package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files. Each record becomes one line with its cells
// separated by ", ".
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var lines []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		lines = append(lines, strings.Join(record, ", "))
	}

	return single(titleFor(filename, ".csv"), strings.Join(lines, "\n")), nil
}
