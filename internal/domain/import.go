package domain

// ImportSummary counts what a reconciliation did.
type ImportSummary struct {
	Total     int `json:"total"`
	Skipped   int `json:"skipped"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
}

// Changed reports whether the reconciliation mutated the store.
func (s ImportSummary) Changed() bool {
	return s.Inserted+s.Updated+s.Deleted > 0
}
