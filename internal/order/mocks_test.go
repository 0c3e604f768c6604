package order

import (
	"context"
	"sync"

	"github.com/Gabriel44svg/Dopple-bar/internal/authz"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	Published   [][]byte
	Topics      []string
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, msg)
	m.Topics = append(m.Topics, topic)
	return nil
}

// MockSubscriber is a mock implementation of events.Subscriber for testing
type MockSubscriber struct {
	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	return nil
}

// MockOrderRepo is a mock implementation of OrderRepo for testing
type MockOrderRepo struct {
	mu         sync.RWMutex
	orders     map[uuid.UUID]*Order
	CreateFunc func(ctx context.Context, o *Order) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateFunc func(ctx context.Context, o *Order) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, o *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id], nil
}

func (m *MockOrderRepo) Update(ctx context.Context, o *Order) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepo) ListOpen(ctx context.Context) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.Status != StatusClosed {
			result = append(result, o)
		}
	}
	return result, nil
}

// MockLineItemRepo is a mock implementation of LineItemRepo for testing.
// Create assigns seqs from a single counter, mirroring the store behavior.
type MockLineItemRepo struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]*LineItem
	nextSeq    int64
	CreateFunc func(ctx context.Context, li *LineItem) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*LineItem, error)
	UpdateFunc func(ctx context.Context, li *LineItem) error
}

func NewMockLineItemRepo() *MockLineItemRepo {
	return &MockLineItemRepo{
		items: make(map[uuid.UUID]*LineItem),
	}
}

func (m *MockLineItemRepo) Create(ctx context.Context, li *LineItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, li)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	li.Seq = m.nextSeq
	m.items[li.ID] = li
	return nil
}

func (m *MockLineItemRepo) Get(ctx context.Context, id uuid.UUID) (*LineItem, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id], nil
}

func (m *MockLineItemRepo) Update(ctx context.Context, li *LineItem) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, li)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[li.ID] = li
	return nil
}

func (m *MockLineItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*LineItem
	for _, li := range m.items {
		if li.OrderID == orderID {
			result = append(result, li)
		}
	}
	return result, nil
}

// MockPromotionRepo is a mock implementation of PromotionRepo for testing
type MockPromotionRepo struct {
	mu     sync.RWMutex
	promos []*Promotion
}

func NewMockPromotionRepo() *MockPromotionRepo {
	return &MockPromotionRepo{}
}

func (m *MockPromotionRepo) Create(ctx context.Context, p *Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos = append(m.promos, p)
	return nil
}

func (m *MockPromotionRepo) List(ctx context.Context) ([]*Promotion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Promotion(nil), m.promos...), nil
}

// MockCouponRepo is a mock implementation of CouponRepo for testing
type MockCouponRepo struct {
	mu      sync.RWMutex
	coupons map[string]*Coupon
}

func NewMockCouponRepo() *MockCouponRepo {
	return &MockCouponRepo{
		coupons: make(map[string]*Coupon),
	}
}

func (m *MockCouponRepo) Create(ctx context.Context, c *Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.Code] = c
	return nil
}

func (m *MockCouponRepo) Get(ctx context.Context, code string) (*Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coupons[code], nil
}

// MockReasonRepo is a mock implementation of ReasonRepo for testing
type MockReasonRepo struct {
	mu      sync.RWMutex
	reasons []*CancellationReason
}

func NewMockReasonRepo() *MockReasonRepo {
	return &MockReasonRepo{}
}

func (m *MockReasonRepo) Create(ctx context.Context, r *CancellationReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, r)
	return nil
}

func (m *MockReasonRepo) List(ctx context.Context) ([]*CancellationReason, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*CancellationReason(nil), m.reasons...), nil
}

func (m *MockReasonRepo) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.reasons)), nil
}

// MockPaymentRepo is a mock implementation of PaymentRepo for testing
type MockPaymentRepo struct {
	mu       sync.RWMutex
	payments []*Payment
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{}
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, p)
	return nil
}

func (m *MockPaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			result = append(result, p)
		}
	}
	return result, nil
}

// MockPolicyRepo is a mock implementation of authz.PolicyRepo for testing
type MockPolicyRepo struct {
	mu       sync.RWMutex
	policies map[string]*authz.Policy
}

func NewMockPolicyRepo() *MockPolicyRepo {
	m := &MockPolicyRepo{
		policies: make(map[string]*authz.Policy),
	}
	for _, p := range authz.DefaultPolicies() {
		m.policies[p.Role] = p
	}
	return m
}

func (m *MockPolicyRepo) Get(ctx context.Context, role string) (*authz.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policies[role], nil
}

func (m *MockPolicyRepo) List(ctx context.Context) ([]*authz.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*authz.Policy
	for _, p := range m.policies {
		result = append(result, p)
	}
	return result, nil
}

func (m *MockPolicyRepo) Save(ctx context.Context, p *authz.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.Role] = p
	return nil
}

func (m *MockPolicyRepo) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.policies)), nil
}
