package domain

import (
	"strconv"
	"strings"
)

// Column status values.
const (
	ColumnStatusActive  = "active"
	ColumnStatusDeleted = "deleted"
)

// Defaults applied to empty annotation fields.
const (
	DefaultColumnNote = "no note"
	DefaultColumnTag  = "no tags"
	DefaultTableNote  = "no note"
	DefaultTableTag   = "no tag"
)

// ColumnKey is the natural key of a column: (keyspace, table, column).
type ColumnKey struct {
	Keyspace string `json:"keyspace_name"`
	Table    string `json:"table_name"`
	Column   string `json:"column_name"`
}

func (k ColumnKey) String() string {
	return k.Keyspace + "." + k.Table + "." + k.Column
}

// Valid reports whether all three key parts are non-empty.
func (k ColumnKey) Valid() bool {
	return k.Keyspace != "" && k.Table != "" && k.Column != ""
}

// ColumnRecord is the stored metadata of one column of a NoSQL table.
type ColumnRecord struct {
	ColumnKey

	ClusteringOrder string `json:"clustering_order"`
	ColumnNameBytes string `json:"column_name_bytes"`
	Kind            string `json:"kind"`
	Position        int    `json:"position"`
	Type            string `json:"type"`
	Note            string `json:"note"`
	Tag             string `json:"tag"`
	Status          string `json:"status"`
}

// SameAttributes reports whether every non-key attribute, status included,
// matches other.
func (c ColumnRecord) SameAttributes(other ColumnRecord) bool {
	return c.ClusteringOrder == other.ClusteringOrder &&
		c.ColumnNameBytes == other.ColumnNameBytes &&
		c.Kind == other.Kind &&
		c.Position == other.Position &&
		c.Type == other.Type &&
		c.Note == other.Note &&
		c.Tag == other.Tag &&
		c.Status == other.Status
}

// ImportRow is one raw row of a column-metadata import. Note, Tag and
// Status are nil when the source has no such field.
type ImportRow struct {
	Keyspace        string
	Table           string
	Column          string
	ClusteringOrder string
	ColumnNameBytes string
	Kind            string
	Position        string
	Type            string
	Note            *string
	Tag             *string
	Status          *string
}

// Normalize trims the row, applies defaults and coerces the position.
// ok is false when any part of the key is empty.
func (r ImportRow) Normalize() (rec ColumnRecord, ok bool) {
	rec = ColumnRecord{
		ColumnKey: ColumnKey{
			Keyspace: strings.TrimSpace(r.Keyspace),
			Table:    strings.TrimSpace(r.Table),
			Column:   strings.TrimSpace(r.Column),
		},
		ClusteringOrder: strings.TrimSpace(r.ClusteringOrder),
		ColumnNameBytes: strings.TrimSpace(r.ColumnNameBytes),
		Kind:            strings.TrimSpace(r.Kind),
		Position:        ParsePosition(r.Position),
		Type:            strings.TrimSpace(r.Type),
		Note:            orDefault(r.Note, DefaultColumnNote),
		Tag:             orDefault(r.Tag, DefaultColumnTag),
		Status:          orDefault(r.Status, ColumnStatusActive),
	}
	return rec, rec.Valid()
}

// ParsePosition parses a column position, returning 0 for anything that is
// not an integer.
func ParsePosition(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func orDefault(p *string, def string) string {
	if p == nil {
		return def
	}
	if v := strings.TrimSpace(*p); v != "" {
		return v
	}
	return def
}
