package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/internal/gateway"
	"surfcamp-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ==================== FAKE ORDER REPOSITORY ====================

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*entity.Order)}
}

func (f *fakeOrderRepo) put(order *entity.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *order
	f.orders[order.ID] = &copied
}

func (f *fakeOrderRepo) get(id string) *entity.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		copied := *order
		return &copied
	}
	return nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	f.put(order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	return f.get(id), nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) ClaimReservation(ctx context.Context, orderID, sentinel string, staleBefore time.Time) (bool, error) {
	// pgx will not acquire a connection on a done context.
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}

	ref := entity.ParseReservationRef(order.ReservationRef)
	free := ref.State == entity.ReservationUnclaimed ||
		(ref.State == entity.ReservationClaiming && ref.StartedAt.Before(staleBefore))
	if !free {
		return false, nil
	}

	order.ReservationRef = &sentinel
	return true, nil
}

func (f *fakeOrderRepo) CommitReservation(ctx context.Context, orderID, sentinel, reservationID string, pmsData json.RawMessage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.ReservationRef == nil || *order.ReservationRef != sentinel {
		return false, nil
	}
	order.ReservationRef = &reservationID
	order.PMSData = pmsData
	order.Status = entity.OrderStatusCompleted
	return true, nil
}

func (f *fakeOrderRepo) ReleaseReservation(ctx context.Context, orderID, sentinel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if ok && order.ReservationRef != nil && *order.ReservationRef == sentinel {
		order.ReservationRef = nil
	}
	return nil
}

// ==================== FAKE PAYMENT REPOSITORY ====================

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*entity.Payment

	// per-method error injection for cascade fall-through tests
	findByOrderIDErr error
	findByBagErr     error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*entity.Payment)}
}

func (f *fakePaymentRepo) put(payment *entity.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *payment
	if payment.ProviderData != nil {
		copied.ProviderData = make(map[string]any, len(payment.ProviderData))
		for k, v := range payment.ProviderData {
			copied.ProviderData[k] = v
		}
	}
	f.payments[payment.ID] = &copied
}

func (f *fakePaymentRepo) get(id string) *entity.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment, ok := f.payments[id]; ok {
		copied := *payment
		return &copied
	}
	return nil
}

func (f *fakePaymentRepo) all() []*entity.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	f.put(payment)
	return nil
}

func (f *fakePaymentRepo) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	return f.get(id), nil
}

func (f *fakePaymentRepo) FindByOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	if f.findByOrderIDErr != nil {
		return nil, f.findByOrderIDErr
	}
	for _, p := range f.all() {
		if p.OrderID == orderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*entity.Payment, error) {
	for _, p := range f.all() {
		if p.ProviderOrderID != nil && *p.ProviderOrderID == providerOrderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByBagValue(ctx context.Context, key, value string) (*entity.Payment, error) {
	if f.findByBagErr != nil {
		return nil, f.findByBagErr
	}
	for _, p := range f.all() {
		if v, ok := p.ProviderData[key].(string); ok && v == value {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByNestedPaymentID(ctx context.Context, paymentID string) (*entity.Payment, error) {
	for _, p := range f.all() {
		metadata, ok := p.ProviderData[entity.BagMetadata].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := metadata["payment_id"].(string); ok && v == paymentID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) UpdateStatus(ctx context.Context, paymentID string, status entity.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	payment.Status = status
	return nil
}

func (f *fakePaymentRepo) MergeProviderData(ctx context.Context, paymentID string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	if payment.ProviderData == nil {
		payment.ProviderData = make(map[string]any)
	}
	for k, v := range data {
		if _, exists := payment.ProviderData[k]; !exists {
			payment.ProviderData[k] = v
		}
	}
	return nil
}

func (f *fakePaymentRepo) SetProviderOrderID(ctx context.Context, paymentID, providerOrderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	if payment.ProviderOrderID == nil {
		payment.ProviderOrderID = &providerOrderID
	}
	return nil
}

// ==================== FAKE WEBHOOK EVENT REPOSITORY ====================

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*entity.WebhookEvent

	insertErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*entity.WebhookEvent)}
}

func (f *fakeEventRepo) Insert(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.events[event.EventKey]; exists {
		return false, nil
	}
	copied := *event
	f.events[event.EventKey] = &copied
	return true, nil
}

func (f *fakeEventRepo) LinkToPayment(ctx context.Context, eventKey, paymentID, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event, ok := f.events[eventKey]; ok {
		event.PaymentID = &paymentID
		event.OrderID = &orderID
	}
	return nil
}

func (f *fakeEventRepo) unlinked() []entity.WebhookEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.WebhookEvent
	for _, event := range f.events {
		if event.PaymentID == nil {
			out = append(out, *event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out
}

func (f *fakeEventRepo) FindUnlinkedByTripID(ctx context.Context, tripID string) ([]entity.WebhookEvent, error) {
	var out []entity.WebhookEvent
	for _, event := range f.unlinked() {
		if event.TripID != nil && *event.TripID == tripID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) FindUnlinked(ctx context.Context, limit int) ([]entity.WebhookEvent, error) {
	events := f.unlinked()
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeEventRepo) LinkUnlinkedByTripID(ctx context.Context, tripID, paymentID, orderID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var linked int64
	for _, event := range f.events {
		if event.PaymentID == nil && event.TripID != nil && *event.TripID == tripID {
			event.PaymentID = &paymentID
			event.OrderID = &orderID
			linked++
		}
	}
	return linked, nil
}

func (f *fakeEventRepo) CountUnlinked(ctx context.Context) (int64, error) {
	return int64(len(f.unlinked())), nil
}

// ==================== FAKE DATABASE ====================

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("not implemented")
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	mu  sync.Mutex
	txs []*fakeTx
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("not implemented")
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) BeginTx(ctx context.Context) (database.TxIface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) Ping(ctx context.Context) error { return nil }

func (d *fakeDB) Close() {}

// ==================== FAKE GATEWAYS ====================

type fakePMS struct {
	mu            sync.Mutex
	calls         int
	reservationID string
	err           error
	delay         time.Duration

	// onCreate runs inside CreateReservation, before the result is returned.
	onCreate func()
}

func (f *fakePMS) CreateReservation(ctx context.Context, order *entity.Order) (*gateway.ReservationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.err != nil {
		return nil, f.err
	}

	id := f.reservationID
	if id == "" {
		id = "RES-1"
	}
	return &gateway.ReservationResult{
		ReservationID: id,
		Raw:           json.RawMessage(fmt.Sprintf(`{"reservationId":%q}`, id)),
	}, nil
}

func (f *fakePMS) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) ReservationConfirmed(ctx context.Context, orderID, reservationID, customerEmail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, orderID)
}

type fakeSweeper struct {
	mu        sync.Mutex
	scheduled []string
}

func (f *fakeSweeper) Schedule(tripID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, tripID)
}

// ==================== HELPERS ====================

func newFakeRepo() (*repository.Repository, *fakeOrderRepo, *fakePaymentRepo, *fakeEventRepo) {
	orders := newFakeOrderRepo()
	payments := newFakePaymentRepo()
	events := newFakeEventRepo()
	repo := &repository.Repository{
		Order:        orders,
		Payment:      payments,
		WebhookEvent: events,
	}
	return repo, orders, payments, events
}

func testOrder(id string, status entity.OrderStatus) *entity.Order {
	return &entity.Order{
		Base: entity.Base{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Status:        status,
		TotalAmount:   150000,
		Currency:      "USD",
		CustomerName:  "Ayu Lestari",
		CustomerEmail: "ayu@example.com",
		BookingData: &entity.BookingDetails{
			CheckIn:    "2026-10-01",
			CheckOut:   "2026-10-05",
			Guests:     2,
			RoomTypeID: "bungalow",
			Nights:     4,
		},
	}
}

func testPayment(id, orderID string, status entity.PaymentStatus) *entity.Payment {
	return &entity.Payment{
		Base: entity.Base{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OrderID:      orderID,
		Status:       status,
		Amount:       15000,
		Currency:     "USD",
		ProviderData: map[string]any{},
	}
}
