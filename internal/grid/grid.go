package grid

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/query"
)

// DefaultIDProperty names the row key holding the primary key when neither
// the DataSource nor WithIDProperty says otherwise.
const DefaultIDProperty = "id"

// DataSource loads and persists rows for a Grid.
type DataSource interface {
	// Load returns the full dataset matching params.
	Load(ctx context.Context, params query.Params) ([]*ir.Row, error)
	// Save persists a diff. On error nothing may be considered saved.
	Save(ctx context.Context, changes Changes) error
	// TotalCount returns the number of rows available at the source.
	TotalCount() int
	// IDProperty names the row key holding the primary key.
	IDProperty() string
}

// Renderer receives the visible rows of the current page after every
// change. Rows marked for deletion are not passed.
type Renderer interface {
	Render(page []*ir.Row)
}

// Grid wires the ChangeStore, EditSession, UndoRedoStack, SelectionSet and
// PageReconciler around an optional DataSource and Renderer.
//
// Row indices in the Grid API are positions in the full dataset. Selection
// and edits are limited to the current page.
type Grid struct {
	mu sync.Mutex

	columns    []column.Column
	source     DataSource
	renderer   Renderer
	params     query.Params
	idProperty string
	ids        IDGenerator
	clock      Clock
	maxUndo    int
	pageSize   int

	store     *ChangeStore
	history   *UndoRedoStack
	session   *EditSession
	selection *SelectionSet
	pager     *PageReconciler
	events    *emitter

	saving     atomic.Bool
	totalItems int
}

// Option configures a Grid.
type Option func(*Grid)

// WithDataSource binds the source used by Load and Save.
func WithDataSource(ds DataSource) Option {
	return func(g *Grid) {
		g.source = ds
	}
}

// WithRenderer sets the render adapter.
func WithRenderer(r Renderer) Option {
	return func(g *Grid) {
		g.renderer = r
	}
}

// WithMaxUndo sets the history depth.
//
// Default: 50 commands (DefaultMaxUndo)
func WithMaxUndo(n int) Option {
	return func(g *Grid) {
		g.maxUndo = n
	}
}

// WithPageSize sets the initial page size.
//
// Default: 25 rows (DefaultPageSize)
func WithPageSize(n int) Option {
	return func(g *Grid) {
		g.pageSize = n
	}
}

// WithIDGenerator sets the generator for temporary row ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(g *Grid) {
		g.ids = gen
	}
}

// WithClock sets the clock stamping changes and commands.
func WithClock(c Clock) Option {
	return func(g *Grid) {
		g.clock = c
	}
}

// WithIDProperty names the primary key column. A bound DataSource's
// IDProperty takes precedence.
func WithIDProperty(key string) Option {
	return func(g *Grid) {
		g.idProperty = key
	}
}

// WithParams sets the initial load parameters.
func WithParams(p query.Params) Option {
	return func(g *Grid) {
		g.params = p
	}
}

// New creates an empty Grid over columns.
func New(columns []column.Column, opts ...Option) *Grid {
	g := &Grid{
		columns:    slices.Clone(columns),
		idProperty: DefaultIDProperty,
		ids:        UUIDv7Generator{},
		clock:      NewClock(),
		maxUndo:    DefaultMaxUndo,
		pageSize:   DefaultPageSize,
		events:     newEmitter(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.source != nil && g.source.IDProperty() != "" {
		g.idProperty = g.source.IDProperty()
	}

	g.store = NewChangeStore(g.columns, g.idProperty, g.ids, g.clock)
	g.history = NewUndoRedoStack(g.store, g.clock, g.maxUndo)
	g.session = newEditSession(g.store, g.history, g.events, g.columns)
	g.pager = NewPageReconciler(g.store, g.pageSize)
	g.selection = NewSelectionSet(0)
	g.rebindPage()
	return g
}

// unlock releases the grid and then delivers the events queued while it
// was held, so listeners can call back into the grid.
func (g *Grid) unlock() {
	queue := g.events.drain()
	g.mu.Unlock()
	deliver(queue)
}

// On registers a listener for an event type.
func (g *Grid) On(t EventType, l Listener) {
	g.mu.Lock()
	defer g.unlock()
	g.events.on(t, l)
}

// Columns returns the column definitions.
func (g *Grid) Columns() []column.Column {
	return slices.Clone(g.columns)
}

// IDProperty returns the primary key column name.
func (g *Grid) IDProperty() string {
	return g.idProperty
}

// SetParams replaces the load parameters used by the next Load.
func (g *Grid) SetParams(p query.Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("set params: %w", err)
	}
	g.mu.Lock()
	defer g.unlock()
	g.params = p
	return nil
}

// Load fetches the dataset from the DataSource and reconciles pending
// changes onto it. An open edit is canceled and the selection cleared.
func (g *Grid) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.unlock()

	if g.source == nil {
		return newGridError(ErrCodeNoDataSource, "grid has no data source")
	}
	rows, err := g.source.Load(ctx, g.params)
	if err != nil {
		return fmt.Errorf("load rows: %w", err)
	}
	g.bindLocked(rows, g.source.TotalCount())
	return nil
}

// Bind installs rows as the dataset, as if loaded, reconciling pending
// changes onto them.
func (g *Grid) Bind(rows []*ir.Row) {
	g.mu.Lock()
	defer g.unlock()
	g.bindLocked(rows, len(rows))
}

func (g *Grid) bindLocked(rows []*ir.Row, total int) {
	g.session.Cancel()
	carried := g.pager.reconcile(rows)
	if dropped := g.history.remap(carried, len(rows)); dropped > 0 {
		slog.Warn("dropped history for rows missing from reloaded data", "commands", dropped)
	}
	g.totalItems = total

	slog.Debug("data loaded",
		"rows", len(rows),
		"pending_cells", len(g.store.modified),
		"added", len(g.store.added),
		"deleted", len(g.store.deleted))

	g.rebindPage()
	g.render()
	g.events.emit(&Event{
		Type:        EventDataLoaded,
		TotalItems:  g.totalItems,
		CurrentPage: g.pager.Page(),
		PageSize:    g.pager.PageSize(),
	})
}

// rebindPage resets the selection and edit bounds to the current page.
func (g *Grid) rebindPage() {
	start, end := g.pager.Bounds()
	g.selection.Reset(end - start)
	g.session.setBounds(start, end)
}

func (g *Grid) render() {
	if g.renderer == nil {
		return
	}
	g.renderer.Render(g.visibleLocked())
}

func (g *Grid) visibleLocked() []*ir.Row {
	start, end := g.pager.Bounds()
	out := make([]*ir.Row, 0, end-start)
	for i := start; i < end; i++ {
		if !g.store.IsDeleted(i) {
			out = append(out, g.store.rows[i])
		}
	}
	return out
}

// Len returns the number of rows, including rows marked for deletion.
func (g *Grid) Len() int {
	g.mu.Lock()
	defer g.unlock()
	return g.store.Len()
}

// Rows returns clones of every row.
func (g *Grid) Rows() []*ir.Row {
	g.mu.Lock()
	defer g.unlock()
	return ir.CloneRows(g.store.Rows())
}

// Row returns a clone of row i.
func (g *Grid) Row(i int) (*ir.Row, bool) {
	g.mu.Lock()
	defer g.unlock()
	r, ok := g.store.Row(i)
	return r.Clone(), ok
}

// Meta returns the metadata of row i.
func (g *Grid) Meta(i int) (RowMeta, bool) {
	g.mu.Lock()
	defer g.unlock()
	return g.store.Meta(i)
}

// Cell returns the value of one cell.
func (g *Grid) Cell(i int, key string) (ir.Value, bool) {
	g.mu.Lock()
	defer g.unlock()
	r, ok := g.store.Row(i)
	if !ok {
		return nil, false
	}
	return r.Lookup(key)
}

// DisplayValue renders a cell for presentation.
func (g *Grid) DisplayValue(i int, key string) (string, bool) {
	g.mu.Lock()
	defer g.unlock()
	r, ok := g.store.Row(i)
	if !ok {
		return "", false
	}
	idx, ok := g.session.index[key]
	if !ok {
		return "", false
	}
	return column.FormatValue(g.columns[idx], r, r.Get(key)), true
}

// Page returns clones of the visible rows of the current page.
func (g *Grid) Page() []*ir.Row {
	g.mu.Lock()
	defer g.unlock()
	return ir.CloneRows(g.visibleLocked())
}

// CurrentPage returns the 1-based current page.
func (g *Grid) CurrentPage() int {
	g.mu.Lock()
	defer g.unlock()
	return g.pager.Page()
}

// PageSize returns the rows per page.
func (g *Grid) PageSize() int {
	g.mu.Lock()
	defer g.unlock()
	return g.pager.PageSize()
}

// TotalPages returns the number of pages.
func (g *Grid) TotalPages() int {
	g.mu.Lock()
	defer g.unlock()
	return g.pager.TotalPages()
}

// TotalItems returns the source's row count reported at the last load.
func (g *Grid) TotalItems() int {
	g.mu.Lock()
	defer g.unlock()
	return g.totalItems
}

// GoToPage moves to a 1-based page. Returns false when the page is out of
// range or an open edit fails validation.
func (g *Grid) GoToPage(page int) bool {
	g.mu.Lock()
	defer g.unlock()

	if !g.settleLocked() || !g.pager.GoToPage(page) {
		return false
	}
	g.pageChangedLocked()
	return true
}

// SetPageSize changes the page size and returns to page 1.
func (g *Grid) SetPageSize(size int) bool {
	g.mu.Lock()
	defer g.unlock()

	if !g.settleLocked() || !g.pager.SetPageSize(size) {
		return false
	}
	g.pageChangedLocked()
	return true
}

func (g *Grid) pageChangedLocked() {
	g.rebindPage()
	g.render()
	g.events.emit(&Event{
		Type:        EventPageChanged,
		CurrentPage: g.pager.Page(),
		PageSize:    g.pager.PageSize(),
		TotalPages:  g.pager.TotalPages(),
	})
}

// settleLocked commits an open edit. Returns false if the edit is invalid
// and remains open.
func (g *Grid) settleLocked() bool {
	if g.session.Commit() == CommitInvalid {
		return false
	}
	return true
}

func (g *Grid) inPage(i int) bool {
	start, end := g.pager.Bounds()
	return i >= start && i < end
}

// StartEdit opens a cell on the current page for editing.
func (g *Grid) StartEdit(i int, key string) bool {
	g.mu.Lock()
	defer g.unlock()

	if !g.inPage(i) {
		return false
	}
	ok := g.session.Start(i, key)
	g.render()
	return ok
}

// SetEditValue feeds the open editor.
func (g *Grid) SetEditValue(v ir.Value) {
	g.mu.Lock()
	defer g.unlock()
	g.session.SetValue(v)
}

// CommitEdit commits the open editor.
func (g *Grid) CommitEdit() CommitResult {
	g.mu.Lock()
	defer g.unlock()

	res := g.session.Commit()
	if res == CommitApplied {
		g.render()
	}
	return res
}

// CancelEdit discards the open editor.
func (g *Grid) CancelEdit() {
	g.mu.Lock()
	defer g.unlock()
	g.session.Cancel()
}

// Navigate commits and moves the editor like Tab (forward) or Shift+Tab.
func (g *Grid) Navigate(forward bool) bool {
	g.mu.Lock()
	defer g.unlock()

	ok := g.session.Navigate(forward)
	g.render()
	return ok
}

// EditState returns the session state and the open cell.
func (g *Grid) EditState() (state EditState, row int, key string) {
	g.mu.Lock()
	defer g.unlock()
	row, key, _ = g.session.Cell()
	return g.session.State(), row, key
}

// EditMessage returns the validation message of the open editor.
func (g *Grid) EditMessage() string {
	g.mu.Lock()
	defer g.unlock()
	return g.session.Message()
}

// EditGeneration returns the open edit's generation token.
func (g *Grid) EditGeneration() uint64 {
	g.mu.Lock()
	defer g.unlock()
	return g.session.Generation()
}

// EditOptions returns the combo options offered by the open editor.
func (g *Grid) EditOptions() []column.Option {
	g.mu.Lock()
	defer g.unlock()
	return slices.Clone(g.session.Options())
}

// AcceptRemoteOptions installs remotely fetched combo options for the edit
// identified by gen. Returns false when that edit is no longer open.
func (g *Grid) AcceptRemoteOptions(gen uint64, opts []column.Option) bool {
	g.mu.Lock()
	defer g.unlock()
	return g.session.AcceptRemoteOptions(gen, opts)
}

// Edit runs a whole edit: start, set value, commit. An invalid value
// cancels the edit and returns the *column.ValidationError.
func (g *Grid) Edit(i int, key string, v ir.Value) (CommitResult, error) {
	g.mu.Lock()
	defer g.unlock()

	if !g.inPage(i) || !g.session.Start(i, key) {
		return CommitRefused, nil
	}
	g.session.SetValue(v)
	res := g.session.Commit()
	if res == CommitInvalid {
		err := g.session.invalid
		g.session.Cancel()
		return res, err
	}
	if res == CommitApplied {
		g.render()
	}
	return res, nil
}

// AddRow appends a row built from column defaults and initial, records it
// for undo and returns its index. Returns false when an open edit fails
// validation.
func (g *Grid) AddRow(initial *ir.Row) (int, bool) {
	g.mu.Lock()
	defer g.unlock()

	if !g.settleLocked() {
		return -1, false
	}
	row := g.store.AddNewRow(initial)
	index := g.store.Len() - 1
	g.history.Record(AddData{
		RowIndex: index,
		Row:      row.Clone(),
		ID:       g.store.meta[index].ID,
	})
	g.afterStructureChange()
	return index, true
}

// DeleteRow deletes row i and records it for undo.
func (g *Grid) DeleteRow(i int) bool {
	g.mu.Lock()
	defer g.unlock()

	if !g.settleLocked() {
		return false
	}
	if !g.deleteLocked(i) {
		return false
	}
	g.afterStructureChange()
	return true
}

func (g *Grid) deleteLocked(i int) bool {
	row, ok := g.store.Row(i)
	if !ok || g.store.IsDeleted(i) {
		return false
	}
	data := DeleteData{
		RowIndex: i,
		Snapshot: row.Clone(),
		ID:       g.store.meta[i].ID,
		Added:    g.store.IsAdded(i),
	}
	if !g.store.DeleteRow(i) {
		return false
	}
	g.history.Record(data)
	return true
}

// DeleteSelected deletes every selected row, highest index first, clears
// the selection and returns how many were deleted.
func (g *Grid) DeleteSelected() int {
	g.mu.Lock()
	defer g.unlock()

	if !g.settleLocked() {
		return 0
	}
	indices := g.selectedLocked()
	slices.Reverse(indices)

	n := 0
	for _, i := range indices {
		if g.deleteLocked(i) {
			n++
		}
	}
	g.selection.DeselectAll()
	g.afterStructureChange()
	g.emitSelection()
	return n
}

// afterStructureChange keeps the page valid after rows were added or
// removed.
func (g *Grid) afterStructureChange() {
	start, end := g.pager.Bounds()
	g.pager.clampPage()
	if s, e := g.pager.Bounds(); s != start || e != end || g.selection.RowCount() != e-s {
		g.rebindPage()
	}
	g.render()
}

// Undo reverts the newest command. An open edit is canceled first.
func (g *Grid) Undo() bool {
	g.mu.Lock()
	defer g.unlock()

	g.session.Cancel()
	if _, ok := g.history.Undo(); !ok {
		return false
	}
	g.afterStructureChange()
	return true
}

// Redo re-applies the newest undone command. An open edit is canceled
// first.
func (g *Grid) Redo() bool {
	g.mu.Lock()
	defer g.unlock()

	g.session.Cancel()
	if _, ok := g.history.Redo(); !ok {
		return false
	}
	g.afterStructureChange()
	return true
}

// CanUndo reports whether Undo would do anything.
func (g *Grid) CanUndo() bool {
	g.mu.Lock()
	defer g.unlock()
	return g.history.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (g *Grid) CanRedo() bool {
	g.mu.Lock()
	defer g.unlock()
	return g.history.CanRedo()
}

// Select selects or deselects row i, which must be on the current page.
func (g *Grid) Select(i int, on bool) bool {
	g.mu.Lock()
	defer g.unlock()

	start, _ := g.pager.Bounds()
	if !g.inPage(i) || !g.selection.Toggle(i-start, on) {
		return false
	}
	g.emitSelection()
	return true
}

// SelectAll selects every row of the current page.
func (g *Grid) SelectAll() {
	g.mu.Lock()
	defer g.unlock()
	g.selection.SelectAll()
	g.emitSelection()
}

// DeselectAll clears the selection.
func (g *Grid) DeselectAll() {
	g.mu.Lock()
	defer g.unlock()
	g.selection.DeselectAll()
	g.emitSelection()
}

// Selected returns the selected row indices in ascending order.
func (g *Grid) Selected() []int {
	g.mu.Lock()
	defer g.unlock()
	return g.selectedLocked()
}

func (g *Grid) selectedLocked() []int {
	start, _ := g.pager.Bounds()
	sel := g.selection.Selected()
	for k := range sel {
		sel[k] += start
	}
	return sel
}

// HeaderState returns the select-all checkbox state.
func (g *Grid) HeaderState() HeaderState {
	g.mu.Lock()
	defer g.unlock()
	return g.selection.HeaderState()
}

func (g *Grid) emitSelection() {
	g.events.emit(&Event{
		Type:         EventSelectionChange,
		SelectedRows: g.selectedLocked(),
		Count:        g.selection.Count(),
	})
}

// HasChanges reports whether anything is pending.
func (g *Grid) HasChanges() bool {
	g.mu.Lock()
	defer g.unlock()
	return g.store.HasChanges()
}

// GetChanges returns the pending diff.
func (g *Grid) GetChanges() Changes {
	g.mu.Lock()
	defer g.unlock()
	return g.store.GetChanges()
}

// ModifiedCells returns the pending cell records ordered by sequence.
func (g *Grid) ModifiedCells() []CellChange {
	g.mu.Lock()
	defer g.unlock()
	return g.store.ModifiedCells()
}

// Saving reports whether a Save is in flight. Safe to call while Save
// holds the grid.
func (g *Grid) Saving() bool {
	return g.saving.Load()
}

// Save commits an open edit and persists the pending diff. On success the
// changes and undo history are cleared; on failure both are left untouched
// so the save can be retried. Either way aftercommit reports the outcome.
//
// beforesave listeners run with the grid unlocked and may call it, even to
// edit. The diff is read again once they return. Ids the DataSource
// assigned to added rows are written back onto the grid's rows.
func (g *Grid) Save(ctx context.Context) error {
	if !g.saving.CompareAndSwap(false, true) {
		return newGridError(ErrCodeSaveInFlight, "a save is already in progress")
	}

	changes, listeners, err := g.prepareSave()
	if err != nil {
		g.saving.Store(false)
		return err
	}
	if !dispatch(&Event{Type: EventBeforeSave, Changes: changes}, listeners) {
		g.saving.Store(false)
		return newGridError(ErrCodeCanceled, "save canceled by listener")
	}

	g.mu.Lock()
	defer func() {
		g.saving.Store(false)
		g.unlock()
	}()

	if err := g.settleSaveLocked(); err != nil {
		return err
	}
	changes = g.store.GetChanges()

	if err := g.source.Save(ctx, changes); err != nil {
		slog.Warn("save failed", "error", err)
		g.events.emit(&Event{Type: EventAfterCommit, Success: false, Err: err})
		return fmt.Errorf("save changes: %w", err)
	}

	slog.Info("saved changes",
		"modified", len(changes.Modified),
		"added", len(changes.Added),
		"deleted", len(changes.Deleted))

	if n := g.store.AdoptIDs(changes.Added); n > 0 {
		slog.Debug("adopted assigned ids", "rows", n)
	}
	g.store.ClearChanges()
	g.history.Clear()
	g.pager.clampPage()
	g.rebindPage()
	g.render()
	g.events.emit(&Event{Type: EventAfterCommit, Success: true})
	return nil
}

// prepareSave settles the open edit and snapshots the diff and the
// beforesave listeners.
func (g *Grid) prepareSave() (Changes, []Listener, error) {
	g.mu.Lock()
	defer g.unlock()

	if err := g.settleSaveLocked(); err != nil {
		return Changes{}, nil, err
	}
	return g.store.GetChanges(), g.events.subscribers(EventBeforeSave), nil
}

func (g *Grid) settleSaveLocked() error {
	if g.source == nil {
		return newGridError(ErrCodeNoDataSource, "grid has no data source")
	}
	if !g.settleLocked() {
		ge := newGridError(ErrCodeEditInvalid, "open edit is invalid: %s", g.session.Message())
		ge.Details = map[string]string{"column": g.session.key}
		return ge
	}
	return nil
}
