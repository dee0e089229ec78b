package domain

import "time"

// Audit actions written by the reconciler.
const (
	AuditActionInsert     = "INSERT"
	AuditActionUpdate     = "UPDATE"
	AuditActionSoftDelete = "SOFT_DELETE"
)

// AuditEntry records a single change to a column record. Before is nil for
// inserts and After is nil for soft deletes.
type AuditEntry struct {
	ColumnKey

	ID        int64         `json:"id"`
	Actor     string        `json:"user_name"`
	Action    string        `json:"action"`
	Before    *ColumnRecord `json:"existing_data"`
	After     *ColumnRecord `json:"updated_data"`
	CreatedAt time.Time     `json:"timestamp"`
}

// AuditFilter narrows an audit log listing. Nil fields do not filter.
type AuditFilter struct {
	Keyspace *string
	Table    *string
	Actor    *string
	Page     PageRequest
}
