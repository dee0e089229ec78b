package domain

// TableDescription holds the manual annotations of a table.
type TableDescription struct {
	Keyspace string `json:"keyspace_name"`
	Table    string `json:"table_name"`
	Note     string `json:"note"`
	Tag      string `json:"tag"`
}
