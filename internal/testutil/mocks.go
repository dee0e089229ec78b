// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sort"
	"sync"

	"nosql-catalog/internal/domain"
)

// === Audit Repository Mock ===

// MockAuditRepo implements domain.AuditRepository for testing.
type MockAuditRepo struct {
	InsertFn func(ctx context.Context, e *domain.AuditEntry) error
	ListFn   func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
	Entries  []*domain.AuditEntry // collected entries for assertions
}

// Insert implements the interface method for testing.
func (m *MockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.InsertFn != nil {
		err := m.InsertFn(ctx, e)
		if err != nil {
			return err
		}
		m.Entries = append(m.Entries, e)
		return nil
	}
	m.Entries = append(m.Entries, e)
	return nil
}

// List implements the interface method for testing.
func (m *MockAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	panic("unexpected call to MockAuditRepo.List")
}

// LastEntry returns the last collected audit entry, or nil if none.
func (m *MockAuditRepo) LastEntry() *domain.AuditEntry {
	if len(m.Entries) == 0 {
		return nil
	}
	return m.Entries[len(m.Entries)-1]
}

// HasAction returns true if any collected entry has the given action.
func (m *MockAuditRepo) HasAction(action string) bool {
	for _, e := range m.Entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

// === Column Repository Mock ===

// MockColumnRepo implements domain.ColumnRepository for testing.
type MockColumnRepo struct {
	ListKeyspacesFn     func(ctx context.Context) ([]string, error)
	ListTablesFn        func(ctx context.Context, keyspace string) ([]string, error)
	ListForTableFn      func(ctx context.Context, keyspace, table string) ([]domain.ColumnRecord, error)
	UpdateAnnotationsFn func(ctx context.Context, key domain.ColumnKey, note, tag string) error
	SearchFn            func(ctx context.Context, filter string, limit int) ([]domain.ColumnRecord, error)
}

// ListKeyspaces implements the interface method for testing.
func (m *MockColumnRepo) ListKeyspaces(ctx context.Context) ([]string, error) {
	if m.ListKeyspacesFn != nil {
		return m.ListKeyspacesFn(ctx)
	}
	panic("unexpected call to MockColumnRepo.ListKeyspaces")
}

// ListTables implements the interface method for testing.
func (m *MockColumnRepo) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	if m.ListTablesFn != nil {
		return m.ListTablesFn(ctx, keyspace)
	}
	panic("unexpected call to MockColumnRepo.ListTables")
}

// ListForTable implements the interface method for testing.
func (m *MockColumnRepo) ListForTable(ctx context.Context, keyspace, table string) ([]domain.ColumnRecord, error) {
	if m.ListForTableFn != nil {
		return m.ListForTableFn(ctx, keyspace, table)
	}
	panic("unexpected call to MockColumnRepo.ListForTable")
}

// UpdateAnnotations implements the interface method for testing.
func (m *MockColumnRepo) UpdateAnnotations(ctx context.Context, key domain.ColumnKey, note, tag string) error {
	if m.UpdateAnnotationsFn != nil {
		return m.UpdateAnnotationsFn(ctx, key, note, tag)
	}
	panic("unexpected call to MockColumnRepo.UpdateAnnotations")
}

// Search implements the interface method for testing.
func (m *MockColumnRepo) Search(ctx context.Context, filter string, limit int) ([]domain.ColumnRecord, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, filter, limit)
	}
	panic("unexpected call to MockColumnRepo.Search")
}

// === Table Description Repository Mock ===

// MockTableDescriptionRepo implements domain.TableDescriptionRepository for testing.
type MockTableDescriptionRepo struct {
	GetFn             func(ctx context.Context, keyspace, table string) (*domain.TableDescription, error)
	UpdateFn          func(ctx context.Context, d *domain.TableDescription) error
	SeedFromColumnsFn func(ctx context.Context) (int64, error)
}

// Get implements the interface method for testing.
func (m *MockTableDescriptionRepo) Get(ctx context.Context, keyspace, table string) (*domain.TableDescription, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, keyspace, table)
	}
	panic("unexpected call to MockTableDescriptionRepo.Get")
}

// Update implements the interface method for testing.
func (m *MockTableDescriptionRepo) Update(ctx context.Context, d *domain.TableDescription) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, d)
	}
	panic("unexpected call to MockTableDescriptionRepo.Update")
}

// SeedFromColumns implements the interface method for testing.
func (m *MockTableDescriptionRepo) SeedFromColumns(ctx context.Context) (int64, error) {
	if m.SeedFromColumnsFn != nil {
		return m.SeedFromColumnsFn(ctx)
	}
	panic("unexpected call to MockTableDescriptionRepo.SeedFromColumns")
}

// === Relation Repository Mock ===

// MockRelationRepo implements domain.RelationRepository for testing.
type MockRelationRepo struct {
	CreateFn   func(ctx context.Context, r *domain.Relation) (*domain.Relation, error)
	ListFromFn func(ctx context.Context, keyspace, table string) ([]domain.Relation, error)
}

// Create implements the interface method for testing.
func (m *MockRelationRepo) Create(ctx context.Context, r *domain.Relation) (*domain.Relation, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	panic("unexpected call to MockRelationRepo.Create")
}

// ListFrom implements the interface method for testing.
func (m *MockRelationRepo) ListFrom(ctx context.Context, keyspace, table string) ([]domain.Relation, error) {
	if m.ListFromFn != nil {
		return m.ListFromFn(ctx, keyspace, table)
	}
	panic("unexpected call to MockRelationRepo.ListFrom")
}

// === User Repository Mock ===

// MockUserRepo implements domain.UserRepository for testing.
type MockUserRepo struct {
	CreateFn    func(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByNameFn func(ctx context.Context, name string) (*domain.User, error)
}

// Create implements the interface method for testing.
func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	panic("unexpected call to MockUserRepo.Create")
}

// GetByName implements the interface method for testing.
func (m *MockUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	panic("unexpected call to MockUserRepo.GetByName")
}

// === Table Dump Repository Mock ===

// MockTableDumpRepo implements domain.TableDumpRepository for testing.
type MockTableDumpRepo struct {
	DumpFn func(ctx context.Context, tableName string) ([]map[string]interface{}, error)
}

// Dump implements the interface method for testing.
func (m *MockTableDumpRepo) Dump(ctx context.Context, tableName string) ([]map[string]interface{}, error) {
	if m.DumpFn != nil {
		return m.DumpFn(ctx, tableName)
	}
	panic("unexpected call to MockTableDumpRepo.Dump")
}

// === In-memory Import Store ===

// MemoryImportStore implements domain.ImportStore over in-memory maps. A
// failed batch leaves the state untouched. The *Err fields inject failures
// for the given keys; AuditErr fails every audit write.
type MemoryImportStore struct {
	mu      sync.Mutex
	Columns map[domain.ColumnKey]domain.ColumnRecord
	Audit   []domain.AuditEntry

	ListErr   error
	InsertErr map[domain.ColumnKey]error
	UpdateErr map[domain.ColumnKey]error
	DeleteErr map[domain.ColumnKey]error
	AuditErr  error
}

// NewMemoryImportStore creates a store holding the given records.
func NewMemoryImportStore(records ...domain.ColumnRecord) *MemoryImportStore {
	s := &MemoryImportStore{Columns: make(map[domain.ColumnKey]domain.ColumnRecord, len(records))}
	for _, r := range records {
		s.Columns[r.ColumnKey] = r
	}
	return s
}

// RunBatch implements domain.ImportStore.
func (s *MemoryImportStore) RunBatch(_ context.Context, fn func(domain.ImportBatch) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &memoryBatch{store: s, columns: make(map[domain.ColumnKey]domain.ColumnRecord, len(s.Columns))}
	for k, v := range s.Columns {
		b.columns[k] = v
	}
	if err := fn(b); err != nil {
		return err
	}
	s.Columns = b.columns
	s.Audit = append(s.Audit, b.audit...)
	return nil
}

// Sorted returns the stored records ordered by key.
func (s *MemoryImportStore) Sorted() []domain.ColumnRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ColumnRecord, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ColumnKey.String() < out[j].ColumnKey.String() })
	return out
}

// AuditActions returns the action of every audit entry, in write order.
func (s *MemoryImportStore) AuditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Audit))
	for i, e := range s.Audit {
		out[i] = e.Action
	}
	return out
}

type memoryBatch struct {
	store   *MemoryImportStore
	columns map[domain.ColumnKey]domain.ColumnRecord
	audit   []domain.AuditEntry
}

func (b *memoryBatch) ListColumns(_ context.Context) ([]domain.ColumnRecord, error) {
	if b.store.ListErr != nil {
		return nil, b.store.ListErr
	}
	out := make([]domain.ColumnRecord, 0, len(b.columns))
	for _, c := range b.columns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ColumnKey.String() < out[j].ColumnKey.String() })
	return out, nil
}

func (b *memoryBatch) InsertColumn(_ context.Context, c *domain.ColumnRecord) error {
	if err := b.store.InsertErr[c.ColumnKey]; err != nil {
		return err
	}
	if _, ok := b.columns[c.ColumnKey]; ok {
		return domain.ErrConflict("column %s already exists", c.ColumnKey)
	}
	b.columns[c.ColumnKey] = *c
	return nil
}

func (b *memoryBatch) UpdateColumn(_ context.Context, c *domain.ColumnRecord) error {
	if err := b.store.UpdateErr[c.ColumnKey]; err != nil {
		return err
	}
	if _, ok := b.columns[c.ColumnKey]; !ok {
		return domain.ErrNotFound("column %s not found", c.ColumnKey)
	}
	b.columns[c.ColumnKey] = *c
	return nil
}

func (b *memoryBatch) MarkColumnDeleted(_ context.Context, key domain.ColumnKey) error {
	if err := b.store.DeleteErr[key]; err != nil {
		return err
	}
	c, ok := b.columns[key]
	if !ok {
		return domain.ErrNotFound("column %s not found", key)
	}
	c.Status = domain.ColumnStatusDeleted
	b.columns[key] = c
	return nil
}

func (b *memoryBatch) AppendAudit(_ context.Context, e *domain.AuditEntry) error {
	if b.store.AuditErr != nil {
		return b.store.AuditErr
	}
	b.audit = append(b.audit, *e)
	return nil
}

func (b *memoryBatch) Atomic(_ context.Context, fn func() error) error {
	columns := make(map[domain.ColumnKey]domain.ColumnRecord, len(b.columns))
	for k, v := range b.columns {
		columns[k] = v
	}
	audit := len(b.audit)
	if err := fn(); err != nil {
		b.columns = columns
		b.audit = b.audit[:audit]
		return err
	}
	return nil
}

// Compile-time interface checks.
var (
	_ domain.AuditRepository            = (*MockAuditRepo)(nil)
	_ domain.ColumnRepository           = (*MockColumnRepo)(nil)
	_ domain.TableDescriptionRepository = (*MockTableDescriptionRepo)(nil)
	_ domain.RelationRepository         = (*MockRelationRepo)(nil)
	_ domain.UserRepository             = (*MockUserRepo)(nil)
	_ domain.TableDumpRepository        = (*MockTableDumpRepo)(nil)
	_ domain.ImportStore                = (*MemoryImportStore)(nil)
)
