package domain

import "context"

// ColumnRepository provides lookups and annotation updates for column records.
type ColumnRepository interface {
	ListKeyspaces(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, keyspace string) ([]string, error)
	ListForTable(ctx context.Context, keyspace, table string) ([]ColumnRecord, error)
	UpdateAnnotations(ctx context.Context, key ColumnKey, note, tag string) error
	Search(ctx context.Context, filter string, limit int) ([]ColumnRecord, error)
}

// TableDescriptionRepository provides access to table-level annotations.
type TableDescriptionRepository interface {
	Get(ctx context.Context, keyspace, table string) (*TableDescription, error)
	Update(ctx context.Context, d *TableDescription) error
	SeedFromColumns(ctx context.Context) (int64, error)
}

// RelationRepository stores and looks up column relations.
type RelationRepository interface {
	Create(ctx context.Context, r *Relation) (*Relation, error)
	ListFrom(ctx context.Context, keyspace, table string) ([]Relation, error)
}

// AuditRepository appends and lists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}

// UserRepository stores user credentials.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
}

// TableDumpRepository returns the raw contents of a store table.
type TableDumpRepository interface {
	Dump(ctx context.Context, tableName string) ([]map[string]interface{}, error)
}

// ImportBatch is the set of store operations available to a reconciliation
// running inside a single transaction.
type ImportBatch interface {
	ListColumns(ctx context.Context) ([]ColumnRecord, error)
	InsertColumn(ctx context.Context, c *ColumnRecord) error
	UpdateColumn(ctx context.Context, c *ColumnRecord) error
	MarkColumnDeleted(ctx context.Context, key ColumnKey) error
	AppendAudit(ctx context.Context, e *AuditEntry) error
	// Atomic runs fn so that its writes are kept only if fn returns nil.
	// The enclosing batch continues either way.
	Atomic(ctx context.Context, fn func() error) error
}

// ImportStore runs fn inside one store transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type ImportStore interface {
	RunBatch(ctx context.Context, fn func(ImportBatch) error) error
}
