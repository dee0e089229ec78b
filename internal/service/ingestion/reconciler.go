package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nosql-catalog/internal/domain"
)

// Reconciler applies an authoritative batch of column records to the store.
// Keys in the batch are inserted or updated, stored keys missing from the
// batch are soft-deleted, and every mutation is audited.
type Reconciler struct {
	store  domain.ImportStore
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler creates a Reconciler.
func NewReconciler(store domain.ImportStore, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger, now: time.Now}
}

// Reconcile normalizes rows and applies them in a single transaction on
// behalf of actor. Row-level write failures are logged and counted in the
// summary; only failures to read the snapshot or commit return an error.
func (r *Reconciler) Reconcile(ctx context.Context, actor string, rows []domain.ImportRow) (*domain.ImportSummary, error) {
	summary := domain.ImportSummary{Total: len(rows)}
	batch := r.normalize(rows, &summary)

	err := r.store.RunBatch(ctx, func(b domain.ImportBatch) error {
		existing, err := b.ListColumns(ctx)
		if err != nil {
			return fmt.Errorf("load stored columns: %w", err)
		}
		snapshot := make(map[domain.ColumnKey]domain.ColumnRecord, len(existing))
		for _, c := range existing {
			snapshot[c.ColumnKey] = c
		}

		inBatch := make(map[domain.ColumnKey]struct{}, len(batch))
		for i := range batch {
			rec := batch[i]
			inBatch[rec.ColumnKey] = struct{}{}

			old, found := snapshot[rec.ColumnKey]
			switch {
			case !found:
				r.apply(ctx, b, actor, domain.AuditActionInsert, nil, &rec, &summary.Inserted, &summary.Failed,
					func() error { return b.InsertColumn(ctx, &rec) })
			case old.SameAttributes(rec):
				summary.Unchanged++
			default:
				before := old
				r.apply(ctx, b, actor, domain.AuditActionUpdate, &before, &rec, &summary.Updated, &summary.Failed,
					func() error { return b.UpdateColumn(ctx, &rec) })
			}
		}

		for i := range existing {
			old := existing[i]
			if _, ok := inBatch[old.ColumnKey]; ok || old.Status == domain.ColumnStatusDeleted {
				continue
			}
			r.apply(ctx, b, actor, domain.AuditActionSoftDelete, &old, nil, &summary.Deleted, &summary.Failed,
				func() error { return b.MarkColumnDeleted(ctx, old.ColumnKey) })
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("import reconciled",
		"actor", actor,
		"total", summary.Total,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"deleted", summary.Deleted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return &summary, nil
}

// normalize trims and defaults every row, drops rows with an incomplete key
// and collapses duplicate keys so that the last occurrence wins. The result
// keeps the order in which keys first appeared. Imported records are always
// active, whatever status the source carries.
func (r *Reconciler) normalize(rows []domain.ImportRow, summary *domain.ImportSummary) []domain.ColumnRecord {
	order := make([]domain.ColumnKey, 0, len(rows))
	latest := make(map[domain.ColumnKey]domain.ColumnRecord, len(rows))
	for i, row := range rows {
		rec, ok := row.Normalize()
		if !ok {
			summary.Skipped++
			r.logger.Debug("skipping row with incomplete key", "row", i+1, "key", rec.ColumnKey.String())
			continue
		}
		rec.Status = domain.ColumnStatusActive
		if _, seen := latest[rec.ColumnKey]; !seen {
			order = append(order, rec.ColumnKey)
		}
		latest[rec.ColumnKey] = rec
	}

	batch := make([]domain.ColumnRecord, 0, len(order))
	for _, k := range order {
		batch = append(batch, latest[k])
	}
	return batch
}

// apply runs one mutation and its audit entry atomically. If either fails
// both are rolled back and the row is counted as failed.
func (r *Reconciler) apply(
	ctx context.Context,
	b domain.ImportBatch,
	actor, action string,
	before, after *domain.ColumnRecord,
	done, failed *int,
	mutate func() error,
) {
	key := keyOf(before, after)
	err := b.Atomic(ctx, func() error {
		if err := mutate(); err != nil {
			return err
		}
		return b.AppendAudit(ctx, &domain.AuditEntry{
			ColumnKey: key,
			Actor:     actor,
			Action:    action,
			Before:    before,
			After:     after,
			CreatedAt: r.now(),
		})
	})
	if err != nil {
		*failed++
		r.logger.Warn("import row failed", "action", action, "key", key.String(), "error", err)
		return
	}
	*done++
}

func keyOf(before, after *domain.ColumnRecord) domain.ColumnKey {
	if after != nil {
		return after.ColumnKey
	}
	return before.ColumnKey
}
