package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

func readCSV(r io.Reader) ([]rawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty input, header required")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	cols, err := newColumns(header)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}

	var rows []rawRow
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, cols.row(line, fields))
	}

	return rows, nil
}
