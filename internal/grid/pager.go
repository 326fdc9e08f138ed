package grid

import (
	"log/slog"

	"github.com/roach88/gridstate/internal/ir"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 25

// PageBounds returns the [start, end) row range of a 1-based page,
// clamped to total. Pages past the end yield an empty range at total.
func PageBounds(total, page, size int) (start, end int) {
	if total <= 0 || page < 1 || size < 1 {
		return 0, 0
	}
	start = (page - 1) * size
	if start >= total {
		return total, total
	}
	return start, min(start+size, total)
}

// WindowPage returns the rows of a 1-based page. The result shares the
// backing array with rows: a page is a view, never a copy.
func WindowPage(rows []*ir.Row, page, size int) []*ir.Row {
	start, end := PageBounds(len(rows), page, size)
	return rows[start:end:end]
}

// TotalPages returns the number of pages needed for total rows.
func TotalPages(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}

// PageReconciler owns the current page position over a ChangeStore and
// restores pending changes onto reloaded data.
type PageReconciler struct {
	store *ChangeStore
	page  int
	size  int
}

// NewPageReconciler creates a reconciler on page 1. size < 1 uses
// DefaultPageSize.
func NewPageReconciler(store *ChangeStore, size int) *PageReconciler {
	if size < 1 {
		size = DefaultPageSize
	}
	return &PageReconciler{store: store, page: 1, size: size}
}

// Page returns the current 1-based page.
func (p *PageReconciler) Page() int { return p.page }

// PageSize returns the rows per page.
func (p *PageReconciler) PageSize() int { return p.size }

// TotalPages returns the page count for the store's rows.
func (p *PageReconciler) TotalPages() int {
	return TotalPages(p.store.Len(), p.size)
}

// Bounds returns the store range of the current page.
func (p *PageReconciler) Bounds() (start, end int) {
	return PageBounds(p.store.Len(), p.page, p.size)
}

// Window returns the rows of the current page.
func (p *PageReconciler) Window() []*ir.Row {
	return WindowPage(p.store.Rows(), p.page, p.size)
}

// GoToPage moves to page. Returns false, leaving the position unchanged,
// when page is outside 1..TotalPages.
func (p *PageReconciler) GoToPage(page int) bool {
	if page < 1 || page > p.TotalPages() {
		slog.Warn("invalid page", "page", page, "total_pages", p.TotalPages())
		return false
	}
	p.page = page
	return true
}

// SetPageSize changes the page size and returns to page 1. Returns false
// when size < 1.
func (p *PageReconciler) SetPageSize(size int) bool {
	if size < 1 {
		return false
	}
	p.size = size
	p.page = 1
	return true
}

// clampPage keeps the current page valid after the row count shrinks.
func (p *PageReconciler) clampPage() {
	if total := p.TotalPages(); p.page > total {
		p.page = max(total, 1)
	}
}

// ReconcileAfterReload binds fresh rows and re-applies pending work onto
// them:
//   - every cell record writes its NewValue onto the fresh row at the same
//     index and marks that row modified
//   - every deleted index is re-flagged StateDestroy
//   - every added row is carried over after the fresh rows, in order, and
//     re-flagged new
//
// Records and deletions whose index is past the end of fresh are dropped.
// Reconciling the same pending set onto structurally equal datasets yields
// equal results.
func (p *PageReconciler) ReconcileAfterReload(fresh []*ir.Row) {
	p.reconcile(fresh)
}

// reconcile does the work of ReconcileAfterReload and returns where each
// carried added row went, old index to new index.
func (p *PageReconciler) reconcile(fresh []*ir.Row) map[int]int {
	s := p.store

	added := sortedKeys(s.added)
	carried := make([]*ir.Row, len(added))
	carriedMeta := make([]RowMeta, len(added))
	for i, idx := range added {
		carried[i] = s.rows[idx]
		carriedMeta[i] = s.meta[idx]
	}
	deleted := s.deleted
	cells := s.modified

	s.bindRows(fresh)
	s.resetTracking()

	n := len(fresh)
	for k, rec := range cells {
		if k.row >= n {
			slog.Warn("dropping cell change past end of reloaded data", "cell", k.String())
			continue
		}
		s.rows[k.row].Set(k.col, rec.NewValue)
		m := &s.meta[k.row]
		m.Modified = true
		m.State = StateUpdate
		s.modified[k] = rec
	}

	for idx, snap := range deleted {
		if idx >= n {
			slog.Warn("dropping deletion past end of reloaded data", "row", idx)
			continue
		}
		s.deleted[idx] = snap
		s.meta[idx].State = StateDestroy
	}

	moved := make(map[int]int, len(carried))
	for i, row := range carried {
		m := carriedMeta[i]
		m.IsNew = true
		m.State = StateCreate
		s.rows = append(s.rows, row)
		s.meta = append(s.meta, m)
		s.added[len(s.rows)-1] = struct{}{}
		moved[added[i]] = len(s.rows) - 1
	}

	p.clampPage()
	return moved
}
