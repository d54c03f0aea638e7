// Package memory provides an in-memory Store implementation
// (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/internal/store"
)

// Memory is an in-memory store. A single mutex serializes every
// transaction, which trivially satisfies the serializable-transaction
// contract; WithinTx snapshots the dataset and restores it when the
// callback fails.
type Memory struct {
	mu   sync.Mutex
	data *dataset
}

type dataset struct {
	nextID    int64
	suppliers map[int64]*model.Supplier
	orders    map[int64]*model.Order
	debts     map[int64]*model.Debt
	payments  map[int64]*model.Payment
}

// New creates an empty in-memory store.
func New() *Memory {
	return &Memory{
		data: &dataset{
			suppliers: make(map[int64]*model.Supplier),
			orders:    make(map[int64]*model.Order),
			debts:     make(map[int64]*model.Debt),
			payments:  make(map[int64]*model.Payment),
		},
	}
}

// snapshot copies the maps. Stored rows are never mutated in place
// (getters and writers always clone), so a shallow map copy is enough
// to roll back.
func (d *dataset) snapshot() *dataset {
	s := &dataset{
		nextID:    d.nextID,
		suppliers: make(map[int64]*model.Supplier, len(d.suppliers)),
		orders:    make(map[int64]*model.Order, len(d.orders)),
		debts:     make(map[int64]*model.Debt, len(d.debts)),
		payments:  make(map[int64]*model.Payment, len(d.payments)),
	}
	for id, v := range d.suppliers {
		s.suppliers[id] = v
	}
	for id, v := range d.orders {
		s.orders[id] = v
	}
	for id, v := range d.debts {
		s.debts[id] = v
	}
	for id, v := range d.payments {
		s.payments[id] = v
	}
	return s
}

func (d *dataset) allocID() int64 {
	d.nextID++
	return d.nextID
}

// WithinTx runs fn under the store mutex and rolls the dataset back if
// fn returns an error.
func (m *Memory) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.data.snapshot()
	if err := fn(&session{data: m.data}); err != nil {
		m.data = snap
		return err
	}
	return nil
}

func (m *Memory) run(fn func(s *session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&session{data: m.data})
}

// session is a Store view bound to an open transaction. It does not
// lock; the owning Memory already holds the mutex.
type session struct {
	data *dataset
}

// WithinTx joins the already-open transaction.
func (s *session) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// ---- suppliers ----

func (s *session) GetSupplier(_ context.Context, id int64) (*model.Supplier, error) {
	sup, ok := s.data.suppliers[id]
	if !ok {
		return nil, nil
	}
	return cloneSupplier(sup), nil
}

func (s *session) GetSupplierByTaxID(_ context.Context, taxID string) (*model.Supplier, error) {
	for _, sup := range s.data.suppliers {
		if sup.TaxID == taxID {
			return cloneSupplier(sup), nil
		}
	}
	return nil, nil
}

func (s *session) ListSuppliers(_ context.Context, filter store.SupplierFilter) ([]*model.Supplier, int, error) {
	var all []*model.Supplier
	for _, sup := range s.data.suppliers {
		if filter.Status != "" && sup.Status != filter.Status {
			continue
		}
		all = append(all, cloneSupplier(sup))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			all = nil
		} else {
			all = all[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (s *session) InsertSupplier(_ context.Context, sup *model.Supplier) error {
	// Mirrors the tax_id unique constraint of the postgres store.
	for _, existing := range s.data.suppliers {
		if existing.TaxID == sup.TaxID {
			return store.ErrDuplicateTaxID
		}
	}
	now := time.Now().UTC()
	sup.ID = s.data.allocID()
	sup.CreatedAt = now
	sup.UpdatedAt = now
	s.data.suppliers[sup.ID] = cloneSupplier(sup)
	return nil
}

func (s *session) UpdateSupplier(_ context.Context, sup *model.Supplier) error {
	for id, existing := range s.data.suppliers {
		if id != sup.ID && existing.TaxID == sup.TaxID {
			return store.ErrDuplicateTaxID
		}
	}
	sup.UpdatedAt = time.Now().UTC()
	s.data.suppliers[sup.ID] = cloneSupplier(sup)
	return nil
}

// ---- orders ----

func (s *session) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	o, ok := s.data.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (s *session) InsertOrder(_ context.Context, o *model.Order) error {
	now := time.Now().UTC()
	o.ID = s.data.allocID()
	o.CreatedAt = now
	o.UpdatedAt = now
	s.data.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *session) UpdateOrder(_ context.Context, o *model.Order) error {
	o.UpdatedAt = time.Now().UTC()
	s.data.orders[o.ID] = cloneOrder(o)
	return nil
}

// ---- debts ----

func (s *session) GetDebt(_ context.Context, id int64) (*model.Debt, error) {
	d, ok := s.data.debts[id]
	if !ok {
		return nil, nil
	}
	return cloneDebt(d), nil
}

func (s *session) GetDebtByOrderID(_ context.Context, orderID int64) (*model.Debt, error) {
	for _, d := range s.data.debts {
		if d.OrderID == orderID {
			return cloneDebt(d), nil
		}
	}
	return nil, nil
}

func (s *session) ListDebtsForSupplier(_ context.Context, supplierID int64) ([]*model.Debt, error) {
	var debts []*model.Debt
	for _, d := range s.data.debts {
		if d.SupplierID == supplierID {
			debts = append(debts, cloneDebt(d))
		}
	}
	sort.Slice(debts, func(i, j int) bool { return debts[i].ID < debts[j].ID })
	return debts, nil
}

func (s *session) InsertDebt(_ context.Context, d *model.Debt) error {
	now := time.Now().UTC()
	d.ID = s.data.allocID()
	d.CreatedAt = now
	d.UpdatedAt = now
	s.data.debts[d.ID] = cloneDebt(d)
	return nil
}

func (s *session) UpdateDebt(_ context.Context, d *model.Debt) error {
	d.UpdatedAt = time.Now().UTC()
	s.data.debts[d.ID] = cloneDebt(d)
	return nil
}

// ---- payments ----

func (s *session) GetPayment(_ context.Context, id int64) (*model.Payment, error) {
	p, ok := s.data.payments[id]
	if !ok {
		return nil, nil
	}
	return clonePayment(p), nil
}

func (s *session) ListActivePaymentsForDebt(ctx context.Context, debtID int64) ([]*model.Payment, error) {
	return s.ListPaymentsForDebt(ctx, debtID, false)
}

func (s *session) ListPaymentsForDebt(_ context.Context, debtID int64, includeDeleted bool) ([]*model.Payment, error) {
	var payments []*model.Payment
	for _, p := range s.data.payments {
		if p.DebtID != debtID {
			continue
		}
		if !includeDeleted && !p.Active() {
			continue
		}
		payments = append(payments, clonePayment(p))
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (s *session) FindActivePaymentByConfirmation(_ context.Context, confirmation string, excludeID int64) (*model.Payment, error) {
	for _, p := range s.data.payments {
		if !p.Active() || p.ID == excludeID {
			continue
		}
		if p.TrimmedConfirmation() == confirmation {
			return clonePayment(p), nil
		}
	}
	return nil, nil
}

func (s *session) InsertPayment(ctx context.Context, p *model.Payment) error {
	// Mirrors the partial unique index of the postgres store.
	if conf := p.TrimmedConfirmation(); conf != "" && p.Active() {
		if existing, _ := s.FindActivePaymentByConfirmation(ctx, conf, 0); existing != nil {
			return store.ErrDuplicateConfirmation
		}
	}
	now := time.Now().UTC()
	p.ID = s.data.allocID()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.data.payments[p.ID] = clonePayment(p)
	return nil
}

func (s *session) UpdatePayment(ctx context.Context, p *model.Payment) error {
	if conf := p.TrimmedConfirmation(); conf != "" && p.Active() {
		if existing, _ := s.FindActivePaymentByConfirmation(ctx, conf, p.ID); existing != nil {
			return store.ErrDuplicateConfirmation
		}
	}
	p.UpdatedAt = time.Now().UTC()
	s.data.payments[p.ID] = clonePayment(p)
	return nil
}

// ---- top-level (auto-commit) delegation ----

func (m *Memory) GetSupplier(ctx context.Context, id int64) (sup *model.Supplier, err error) {
	err = m.run(func(s *session) error { sup, err = s.GetSupplier(ctx, id); return err })
	return
}

func (m *Memory) GetSupplierByTaxID(ctx context.Context, taxID string) (sup *model.Supplier, err error) {
	err = m.run(func(s *session) error { sup, err = s.GetSupplierByTaxID(ctx, taxID); return err })
	return
}

func (m *Memory) ListSuppliers(ctx context.Context, filter store.SupplierFilter) (sups []*model.Supplier, total int, err error) {
	err = m.run(func(s *session) error { sups, total, err = s.ListSuppliers(ctx, filter); return err })
	return
}

func (m *Memory) InsertSupplier(ctx context.Context, sup *model.Supplier) error {
	return m.run(func(s *session) error { return s.InsertSupplier(ctx, sup) })
}

func (m *Memory) UpdateSupplier(ctx context.Context, sup *model.Supplier) error {
	return m.run(func(s *session) error { return s.UpdateSupplier(ctx, sup) })
}

func (m *Memory) GetOrder(ctx context.Context, id int64) (o *model.Order, err error) {
	err = m.run(func(s *session) error { o, err = s.GetOrder(ctx, id); return err })
	return
}

func (m *Memory) InsertOrder(ctx context.Context, o *model.Order) error {
	return m.run(func(s *session) error { return s.InsertOrder(ctx, o) })
}

func (m *Memory) UpdateOrder(ctx context.Context, o *model.Order) error {
	return m.run(func(s *session) error { return s.UpdateOrder(ctx, o) })
}

func (m *Memory) GetDebt(ctx context.Context, id int64) (d *model.Debt, err error) {
	err = m.run(func(s *session) error { d, err = s.GetDebt(ctx, id); return err })
	return
}

func (m *Memory) GetDebtByOrderID(ctx context.Context, orderID int64) (d *model.Debt, err error) {
	err = m.run(func(s *session) error { d, err = s.GetDebtByOrderID(ctx, orderID); return err })
	return
}

func (m *Memory) ListDebtsForSupplier(ctx context.Context, supplierID int64) (debts []*model.Debt, err error) {
	err = m.run(func(s *session) error { debts, err = s.ListDebtsForSupplier(ctx, supplierID); return err })
	return
}

func (m *Memory) InsertDebt(ctx context.Context, d *model.Debt) error {
	return m.run(func(s *session) error { return s.InsertDebt(ctx, d) })
}

func (m *Memory) UpdateDebt(ctx context.Context, d *model.Debt) error {
	return m.run(func(s *session) error { return s.UpdateDebt(ctx, d) })
}

func (m *Memory) GetPayment(ctx context.Context, id int64) (p *model.Payment, err error) {
	err = m.run(func(s *session) error { p, err = s.GetPayment(ctx, id); return err })
	return
}

func (m *Memory) ListActivePaymentsForDebt(ctx context.Context, debtID int64) (ps []*model.Payment, err error) {
	err = m.run(func(s *session) error { ps, err = s.ListActivePaymentsForDebt(ctx, debtID); return err })
	return
}

func (m *Memory) ListPaymentsForDebt(ctx context.Context, debtID int64, includeDeleted bool) (ps []*model.Payment, err error) {
	err = m.run(func(s *session) error { ps, err = s.ListPaymentsForDebt(ctx, debtID, includeDeleted); return err })
	return
}

func (m *Memory) FindActivePaymentByConfirmation(ctx context.Context, confirmation string, excludeID int64) (p *model.Payment, err error) {
	err = m.run(func(s *session) error {
		p, err = s.FindActivePaymentByConfirmation(ctx, confirmation, excludeID)
		return err
	})
	return
}

func (m *Memory) InsertPayment(ctx context.Context, p *model.Payment) error {
	return m.run(func(s *session) error { return s.InsertPayment(ctx, p) })
}

func (m *Memory) UpdatePayment(ctx context.Context, p *model.Payment) error {
	return m.run(func(s *session) error { return s.UpdatePayment(ctx, p) })
}

var _ store.Store = (*Memory)(nil)
var _ store.Store = (*session)(nil)
