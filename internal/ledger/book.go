package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/evcraddock/rentbook/internal/property"
)

// Book owns the in-memory property collection and keeps it consistent with
// the store. Every mutation writes to the store first and only then updates
// the collection with what the store returned.
type Book struct {
	store  property.Store
	engine *Engine
	logger *zap.Logger

	mu    sync.RWMutex
	props []property.Property

	locksMu sync.Mutex
	locks   map[string]*idLock
}

// idLock serializes writes to one property. refs counts holders and
// waiters so the entry can be dropped once nobody uses it.
type idLock struct {
	mu   sync.Mutex
	refs int
}

// NewBook creates an empty book over store. A nil logger discards logs.
func NewBook(store property.Store, engine *Engine, logger *zap.Logger) *Book {
	if engine == nil {
		engine = NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{
		store:  store,
		engine: engine,
		logger: logger,
		props:  []property.Property{},
		locks:  make(map[string]*idLock),
	}
}

// Load replaces the collection with the store's contents.
func (b *Book) Load(ctx context.Context) error {
	rows, err := b.store.ListAll(ctx)
	if err != nil {
		return b.storeErr("list", "", err)
	}

	props := make([]property.Property, 0, len(rows))
	for _, r := range rows {
		props = append(props, property.FromRow(r))
	}

	b.mu.Lock()
	b.props = props
	b.mu.Unlock()
	return nil
}

// Properties returns a copy of the collection in load and insertion order.
func (b *Book) Properties() []property.Property {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]property.Property, len(b.props))
	for i, p := range b.props {
		out[i] = p.Clone()
	}
	return out
}

// Get returns the property with id.
func (b *Book) Get(id string) (property.Property, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.indexOf(id); i >= 0 {
		return b.props[i].Clone(), true
	}
	return property.Property{}, false
}

// Add validates input, inserts it and appends the stored property.
func (b *Book) Add(ctx context.Context, in NewProperty) (property.Property, error) {
	p, err := b.engine.Create(in)
	if err != nil {
		return property.Property{}, err
	}

	row, err := b.store.Insert(context.WithoutCancel(ctx), property.ToRow(p))
	if err != nil {
		return property.Property{}, b.storeErr("insert", "", err)
	}

	saved := property.FromRow(row)
	b.mu.Lock()
	b.props = append(b.props, saved)
	b.mu.Unlock()

	b.logger.Info("property added", zap.String("id", saved.ID), zap.String("apartment", saved.ApartmentName))
	return saved.Clone(), nil
}

// Update applies patch to property id. It returns ok=false without touching
// the store when id is unknown, and ok=false when the store no longer has it.
func (b *Book) Update(ctx context.Context, id string, patch property.Patch) (property.Property, bool, error) {
	unlock := b.lock(id)
	defer unlock()

	current, ok := b.Get(id)
	if !ok {
		return property.Property{}, false, nil
	}
	next := b.engine.Apply(current, patch)
	return b.write(ctx, "update", id, patch.Row(), next)
}

// RecordPayment records a payment of amt against property id.
func (b *Book) RecordPayment(ctx context.Context, id string, amt decimal.Decimal) (property.Property, bool, error) {
	unlock := b.lock(id)
	defer unlock()

	current, ok := b.Get(id)
	if !ok {
		return property.Property{}, false, nil
	}
	next, err := b.engine.RecordPayment(current, amt)
	if err != nil {
		return property.Property{}, true, err
	}

	row := property.Row{
		Debt:           &next.Debt,
		IsPaid:         &next.IsPaid,
		PaymentHistory: next.PaymentHistory,
	}
	saved, found, err := b.write(ctx, "payment", id, row, next)
	if err == nil && found {
		b.logger.Info("payment recorded",
			zap.String("id", id),
			zap.String("amount", amt.String()),
			zap.String("debt", saved.Debt.String()))
	}
	return saved, found, err
}

// PreviewPayment reports what paying amt against property id would leave
// owing. Nothing is written.
func (b *Book) PreviewPayment(id string, amt decimal.Decimal) (PaymentPreview, bool, error) {
	current, ok := b.Get(id)
	if !ok {
		return PaymentPreview{}, false, nil
	}
	preview, err := b.engine.PreviewPayment(current, amt)
	return preview, true, err
}

// TogglePaid flips the paid flag of property id.
func (b *Book) TogglePaid(ctx context.Context, id string) (property.Property, bool, error) {
	unlock := b.lock(id)
	defer unlock()

	current, ok := b.Get(id)
	if !ok {
		return property.Property{}, false, nil
	}
	next := b.engine.TogglePaid(current)
	return b.write(ctx, "toggle", id, property.Row{IsPaid: &next.IsPaid}, next)
}

// Delete removes property id. It returns false when id is unknown.
func (b *Book) Delete(ctx context.Context, id string) (bool, error) {
	unlock := b.lock(id)
	defer unlock()

	if _, ok := b.Get(id); !ok {
		return false, nil
	}

	if err := b.store.Delete(context.WithoutCancel(ctx), id); err != nil {
		return false, b.storeErr("delete", id, err)
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.props = append(b.props[:i:i], b.props[i+1:]...)
	}
	b.mu.Unlock()

	b.logger.Info("property removed", zap.String("id", id))
	return true, nil
}

// write sends row to the store and reflects the stored property in place.
// The collection is unchanged when the store fails or has no such row.
func (b *Book) write(ctx context.Context, op, id string, row property.Row, next property.Property) (property.Property, bool, error) {
	stored, err := b.store.Update(context.WithoutCancel(ctx), id, row)
	if err != nil {
		return property.Property{}, true, b.storeErr(op, id, err)
	}
	if stored == nil {
		b.logger.Warn("property missing from store", zap.String("op", op), zap.String("id", id))
		return property.Property{}, false, nil
	}

	saved := property.FromRow(*stored)
	if saved.ID == "" {
		saved.ID = next.ID
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.props[i] = saved
	}
	b.mu.Unlock()

	return saved.Clone(), true, nil
}

func (b *Book) storeErr(op, id string, err error) error {
	b.logger.Error("store operation failed", zap.String("op", op), zap.String("id", id), zap.Error(err))
	return &StoreError{Op: op, ID: id, Err: err}
}

// indexOf must be called with mu held.
func (b *Book) indexOf(id string) int {
	for i := range b.props {
		if b.props[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Book) lock(id string) func() {
	b.locksMu.Lock()
	l, ok := b.locks[id]
	if !ok {
		l = &idLock{}
		b.locks[id] = l
	}
	l.refs++
	b.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		b.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, id)
		}
		b.locksMu.Unlock()
	}
}
