package ingestion

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"nosql-catalog/internal/domain"
)

const utf8BOM = "\ufeff"

// requiredHeaders must all be present in the header row.
var requiredHeaders = []string{"keyspace_name", "table_name", "column_name"}

// ParseCSV reads column-metadata rows from r. The first record is the
// header; header names are trimmed and a leading UTF-8 BOM is ignored.
// Short rows are padded with empty fields. Note, tag and status are left nil
// on every row when the header has no such column.
func ParseCSV(r io.Reader) ([]domain.ImportRow, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrValidation("csv file is empty")
	}
	if err != nil {
		return nil, domain.ErrValidation("read csv header: %v", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range requiredHeaders {
		if _, ok := index[name]; !ok {
			return nil, domain.ErrValidation("csv header is missing %q", name)
		}
	}

	var rows []domain.ImportRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ErrValidation("read csv: %v", err)
		}
		rows = append(rows, toImportRow(index, record))
	}
	return rows, nil
}

func toImportRow(index map[string]int, record []string) domain.ImportRow {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	optional := func(name string) *string {
		if _, ok := index[name]; !ok {
			return nil
		}
		v := field(name)
		return &v
	}

	return domain.ImportRow{
		Keyspace:        field("keyspace_name"),
		Table:           field("table_name"),
		Column:          field("column_name"),
		ClusteringOrder: field("clustering_order"),
		ColumnNameBytes: field("column_name_bytes"),
		Kind:            field("kind"),
		Position:        field("position"),
		Type:            field("type"),
		Note:            optional("note"),
		Tag:             optional("tag"),
		Status:          optional("status"),
	}
}
