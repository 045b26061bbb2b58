package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

// MemStore is an in-memory Store with real claim and insert semantics.
// A single mutex serializes WithinTx bodies the way the product and
// rental row locks serialize the Postgres transactions they stand in
// for, which makes it usable from concurrent goroutines. A failing
// transaction body rolls the state back to its pre-transaction copy.
type MemStore struct {
	mu sync.Mutex
	st *memState
}

type memState struct {
	rentals      map[uuid.UUID]domain.RentalOrder
	payments     map[uuid.UUID]domain.PaymentRecord
	deposits     map[uuid.UUID]domain.DepositRecord
	reservations []domain.AvailabilityReservation
	products     map[int32]domain.Product
	notes        []domain.Notification
	nextResID    int64
	nextProdID   int32
	nextNoteID   int32
}

func NewMemStore() *MemStore {
	return &MemStore{st: &memState{
		rentals:  make(map[uuid.UUID]domain.RentalOrder),
		payments: make(map[uuid.UUID]domain.PaymentRecord),
		deposits: make(map[uuid.UUID]domain.DepositRecord),
		products: make(map[int32]domain.Product),
	}}
}

func (s *MemStore) Repos() *repository.Repositories {
	return bindMemRepos(s.st, &s.mu)
}

func (s *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r *repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(ctx, bindMemRepos(s.st, nopLocker{})); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

// nopLocker binds repositories inside WithinTx, where the store mutex
// is already held.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

func bindMemRepos(st *memState, l sync.Locker) *repository.Repositories {
	return &repository.Repositories{
		Rentals:       &memRentalRepo{st: st, l: l},
		Payments:      &memPaymentRepo{st: st, l: l},
		Deposits:      &memDepositRepo{st: st, l: l},
		Reservations:  &memReservationRepo{st: st, l: l},
		Products:      &memProductRepo{st: st, l: l},
		Notifications: &memNotificationRepo{st: st, l: l},
	}
}

func (st *memState) clone() *memState {
	cp := &memState{
		rentals:      make(map[uuid.UUID]domain.RentalOrder, len(st.rentals)),
		payments:     make(map[uuid.UUID]domain.PaymentRecord, len(st.payments)),
		deposits:     make(map[uuid.UUID]domain.DepositRecord, len(st.deposits)),
		reservations: append([]domain.AvailabilityReservation(nil), st.reservations...),
		products:     make(map[int32]domain.Product, len(st.products)),
		notes:        append([]domain.Notification(nil), st.notes...),
		nextResID:    st.nextResID,
		nextProdID:   st.nextProdID,
		nextNoteID:   st.nextNoteID,
	}
	for k, v := range st.rentals {
		cp.rentals[k] = v
	}
	for k, v := range st.payments {
		cp.payments[k] = v
	}
	for k, v := range st.deposits {
		cp.deposits[k] = v
	}
	for k, v := range st.products {
		cp.products[k] = v
	}
	return cp
}

type memRentalRepo struct {
	st *memState
	l  sync.Locker
}

func (r *memRentalRepo) Create(ctx context.Context, rt *domain.RentalOrder) error {
	r.l.Lock()
	defer r.l.Unlock()
	now := time.Now().UTC()
	rt.CreatedAt = now
	rt.UpdatedAt = now
	r.st.rentals[rt.ID] = *rt
	return nil
}

func (r *memRentalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	r.l.Lock()
	defer r.l.Unlock()
	rt, ok := r.st.rentals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rt, nil
}

func (r *memRentalRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memRentalRepo) UpdateStatus(ctx context.Context, rt *domain.RentalOrder) error {
	r.l.Lock()
	defer r.l.Unlock()
	cur, ok := r.st.rentals[rt.ID]
	if !ok || cur.Version != rt.Version {
		return &domain.ConcurrentModificationError{RentalID: rt.ID}
	}
	rt.Version++
	rt.UpdatedAt = time.Now().UTC()
	r.st.rentals[rt.ID] = *rt
	return nil
}

func (r *memRentalRepo) ListByProduct(ctx context.Context, productID int32, status domain.RentalStatus) ([]domain.RentalOrder, error) {
	r.l.Lock()
	defer r.l.Unlock()
	var out []domain.RentalOrder
	for _, rt := range r.st.rentals {
		if rt.ProductID == productID && (status == "" || rt.Status == status) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RentalStart.Before(out[j].RentalStart) })
	return out, nil
}

func (r *memRentalRepo) ListApprovedUnpaidStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error) {
	r.l.Lock()
	defer r.l.Unlock()
	var out []domain.RentalOrder
	for _, rt := range r.st.rentals {
		if rt.Status != domain.RentalStatusApproved || !rt.RentalStart.Before(cutoff) {
			continue
		}
		if r.st.hasCompletedPayment(rt.ID) {
			continue
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RentalStart.Before(out[j].RentalStart) })
	return out, nil
}

func (r *memRentalRepo) ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error) {
	r.l.Lock()
	defer r.l.Unlock()
	var out []domain.RentalOrder
	for _, rt := range r.st.rentals {
		if rt.Status == domain.RentalStatusActive && !rt.RentalEnd.After(cutoff) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RentalEnd.Before(out[j].RentalEnd) })
	return out, nil
}

func (st *memState) hasCompletedPayment(rentalID uuid.UUID) bool {
	for _, p := range st.payments {
		if p.RentalID == rentalID && p.Status == domain.PaymentStatusCompleted {
			return true
		}
	}
	return false
}

type memPaymentRepo struct {
	st *memState
	l  sync.Locker
}

func (r *memPaymentRepo) Create(ctx context.Context, p *domain.PaymentRecord) error {
	r.l.Lock()
	defer r.l.Unlock()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.st.payments[p.ID] = *p
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	r.l.Lock()
	defer r.l.Unlock()
	p, ok := r.st.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memPaymentRepo) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.claim(id, domain.PaymentStatusCompleted)
}

func (r *memPaymentRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.claim(id, domain.PaymentStatusFailed)
}

// claim mirrors the status-filtered UPDATE: only a PENDING payment can
// move, and the first caller wins.
func (r *memPaymentRepo) claim(id uuid.UUID, to domain.PaymentStatus) (bool, error) {
	r.l.Lock()
	defer r.l.Unlock()
	p, ok := r.st.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	r.st.payments[id] = p
	return true, nil
}

func (r *memPaymentRepo) HasCompleted(ctx context.Context, rentalID uuid.UUID) (bool, error) {
	r.l.Lock()
	defer r.l.Unlock()
	return r.st.hasCompletedPayment(rentalID), nil
}

func (r *memPaymentRepo) CountFailed(ctx context.Context, rentalID uuid.UUID) (int32, error) {
	r.l.Lock()
	defer r.l.Unlock()
	var n int32
	for _, p := range r.st.payments {
		if p.RentalID == rentalID && p.Status == domain.PaymentStatusFailed {
			n++
		}
	}
	return n, nil
}

type memDepositRepo struct {
	st *memState
	l  sync.Locker
}

func (r *memDepositRepo) Create(ctx context.Context, d *domain.DepositRecord) error {
	r.l.Lock()
	defer r.l.Unlock()
	d.CreatedAt = time.Now().UTC()
	r.st.deposits[d.RentalID] = *d
	return nil
}

func (r *memDepositRepo) GetByRental(ctx context.Context, rentalID uuid.UUID) (*domain.DepositRecord, error) {
	r.l.Lock()
	defer r.l.Unlock()
	d, ok := r.st.deposits[rentalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *memDepositRepo) Dispose(ctx context.Context, rentalID uuid.UUID, to domain.DepositStatus) (bool, error) {
	r.l.Lock()
	defer r.l.Unlock()
	d, ok := r.st.deposits[rentalID]
	if !ok || d.Status != domain.DepositStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	d.Status = to
	d.DisposedAt = &now
	r.st.deposits[rentalID] = d
	return true, nil
}

type memReservationRepo struct {
	st *memState
	l  sync.Locker
}

func (r *memReservationRepo) Insert(ctx context.Context, res *domain.AvailabilityReservation) error {
	r.l.Lock()
	defer r.l.Unlock()
	r.st.nextResID++
	res.ID = r.st.nextResID
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	r.st.reservations = append(r.st.reservations, *res)
	return nil
}

func (r *memReservationRepo) AnyHeldOverlapping(ctx context.Context, productID int32, iv domain.Interval) (bool, error) {
	r.l.Lock()
	defer r.l.Unlock()
	for _, res := range r.st.reservations {
		if res.ProductID == productID && res.State == domain.ReservationHeld && iv.Overlaps(res.Interval()) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memReservationRepo) ListHeldByProduct(ctx context.Context, productID int32) ([]domain.AvailabilityReservation, error) {
	r.l.Lock()
	defer r.l.Unlock()
	var out []domain.AvailabilityReservation
	for _, res := range r.st.reservations {
		if res.ProductID == productID && res.State == domain.ReservationHeld {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *memReservationRepo) ReleaseByRental(ctx context.Context, rentalID uuid.UUID) error {
	return r.retire(rentalID, domain.ReservationReleased)
}

func (r *memReservationRepo) ArchiveByRental(ctx context.Context, rentalID uuid.UUID) error {
	return r.retire(rentalID, domain.ReservationArchived)
}

func (r *memReservationRepo) retire(rentalID uuid.UUID, to domain.ReservationState) error {
	r.l.Lock()
	defer r.l.Unlock()
	for i, res := range r.st.reservations {
		if res.RentalID == rentalID && res.State == domain.ReservationHeld {
			r.st.reservations[i].State = to
			r.st.reservations[i].UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

type memProductRepo struct {
	st *memState
	l  sync.Locker
}

func (r *memProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.l.Lock()
	defer r.l.Unlock()
	r.st.nextProdID++
	p.ID = r.st.nextProdID
	p.CreatedAt = time.Now().UTC().Format("2006-01-02")
	r.st.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	r.l.Lock()
	defer r.l.Unlock()
	p, ok := r.st.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memProductRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error {
	r.l.Lock()
	defer r.l.Unlock()
	p, ok := r.st.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	r.st.products[id] = p
	return nil
}

type memNotificationRepo struct {
	st *memState
	l  sync.Locker
}

func (r *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.l.Lock()
	defer r.l.Unlock()
	r.st.nextNoteID++
	n.ID = r.st.nextNoteID
	n.CreatedOn = time.Now().UTC().Format("2006-01-02")
	r.st.notes = append(r.st.notes, *n)
	return nil
}

func (r *memNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	r.l.Lock()
	defer r.l.Unlock()
	var mine []domain.Notification
	for i := len(r.st.notes) - 1; i >= 0; i-- {
		if r.st.notes[i].UserID == userID {
			mine = append(mine, r.st.notes[i])
		}
	}
	total := int32(len(mine))
	if offset >= total {
		return nil, total, nil
	}
	mine = mine[offset:]
	if int32(len(mine)) > limit {
		mine = mine[:limit]
	}
	return mine, total, nil
}

func (r *memNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	r.l.Lock()
	defer r.l.Unlock()
	for i := range r.st.notes {
		if r.st.notes[i].ID == id && r.st.notes[i].UserID == userID {
			r.st.notes[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}
