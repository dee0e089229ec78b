package domain

// Relation is a directed edge between two columns, possibly in different
// tables or keyspaces.
type Relation struct {
	ID           int64  `json:"-"`
	FromKeyspace string `json:"from_keyspace"`
	FromTable    string `json:"from_table"`
	FromColumn   string `json:"from_column"`
	ToKeyspace   string `json:"to_keyspace"`
	ToTable      string `json:"to_table"`
	ToColumn     string `json:"to_column"`
	IsPublished  bool   `json:"is_published"`
}

// CreateRelationRequest holds the fields of a new relation. IsPublished is a
// pointer so that an absent flag can be told apart from false.
type CreateRelationRequest struct {
	FromKeyspace string
	FromTable    string
	FromColumn   string
	ToKeyspace   string
	ToTable      string
	ToColumn     string
	IsPublished  *bool
}

// Validate checks that every field is present.
func (r *CreateRelationRequest) Validate() error {
	if r.FromKeyspace == "" || r.FromTable == "" || r.FromColumn == "" ||
		r.ToKeyspace == "" || r.ToTable == "" || r.ToColumn == "" || r.IsPublished == nil {
		return ErrValidation("Missing required fields")
	}
	return nil
}
