// Package repotest provides in-memory repository implementations for tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	dbm "mibe/internal/models/db_models"
	"mibe/internal/repositories"
	"mibe/pkg/utils"
)

// MemoryBillingStore mirrors the postgres constraints the reconciler depends
// on: unique subscriptions.company_id and unique non-empty
// payment_history.gateway_reference. Each call locks independently, so two
// goroutines can interleave inside their transactions the way two database
// sessions would.
type MemoryBillingStore struct {
	mu            sync.Mutex
	subscriptions map[uuid.UUID]dbm.Subscription
	history       []dbm.PaymentHistory

	// AfterFind runs after every FindSubscriptionByCompany, outside the lock.
	AfterFind func(companyID string)

	FindErr   error
	CreateErr error
	UpdateErr error
	AppendErr error
	CheckErr  error

	Creates int
	Updates int
}

func NewMemoryBillingStore() *MemoryBillingStore {
	return &MemoryBillingStore{subscriptions: make(map[uuid.UUID]dbm.Subscription)}
}

// Seed inserts a subscription without checking constraints, which lets tests
// build states the database would refuse.
func (m *MemoryBillingStore) Seed(sub dbm.Subscription) dbm.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	m.subscriptions[sub.ID] = sub
	return sub
}

// SeedPayment appends a history entry without checking constraints.
func (m *MemoryBillingStore) SeedPayment(entry dbm.PaymentHistory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.history = append(m.history, entry)
}

// Subscriptions returns every stored subscription ordered by company.
func (m *MemoryBillingStore) Subscriptions() []dbm.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dbm.Subscription, 0, len(m.subscriptions))
	for _, s := range m.subscriptions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out
}

// Subscription returns the company's subscription, if any.
func (m *MemoryBillingStore) Subscription(companyID string) (dbm.Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subscriptions {
		if s.CompanyID == companyID {
			return s, true
		}
	}
	return dbm.Subscription{}, false
}

func (m *MemoryBillingStore) History() []dbm.PaymentHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dbm.PaymentHistory(nil), m.history...)
}

func (m *MemoryBillingStore) FindSubscriptionByCompany(ctx context.Context, companyID string) (*dbm.Subscription, error) {
	sub, err := m.find(ctx, companyID)
	if m.AfterFind != nil {
		m.AfterFind(companyID)
	}
	return sub, err
}

func (m *MemoryBillingStore) find(ctx context.Context, companyID string) (*dbm.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find subscription: %w: %w", utils.ErrDatabaseError, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}

	var found []dbm.Subscription
	for _, s := range m.subscriptions {
		if s.CompanyID == companyID {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: company %s has more than one subscription", utils.ErrDataIntegrity, companyID)
	}
}

func (m *MemoryBillingStore) CreateSubscription(ctx context.Context, sub *dbm.Subscription) error {
	_, err := m.create(ctx, sub)
	return err
}

func (m *MemoryBillingStore) create(ctx context.Context, sub *dbm.Subscription) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create subscription: %w: %w", utils.ErrDatabaseError, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	for _, s := range m.subscriptions {
		if s.CompanyID == sub.CompanyID {
			return nil, fmt.Errorf("create subscription: %w", utils.ErrDuplicateRecord)
		}
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := utils.NowUnixSeconds()
	sub.CreatedAt, sub.UpdatedAt = now, now
	m.subscriptions[sub.ID] = *sub
	m.Creates++

	id := sub.ID
	return func() { delete(m.subscriptions, id); m.Creates-- }, nil
}

func (m *MemoryBillingStore) UpdateSubscription(ctx context.Context, sub *dbm.Subscription) error {
	_, err := m.update(ctx, sub)
	return err
}

func (m *MemoryBillingStore) update(ctx context.Context, sub *dbm.Subscription) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update subscription: %w: %w", utils.ErrDatabaseError, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	prev, ok := m.subscriptions[sub.ID]
	if !ok {
		return nil, fmt.Errorf("update subscription %s: %w", sub.ID, utils.RecordNotFound)
	}
	next := prev
	next.Status = sub.Status
	next.PlanID = sub.PlanID
	next.StartedAt = sub.StartedAt
	next.UpdatedAt = utils.NowUnixSeconds()
	m.subscriptions[sub.ID] = next
	m.Updates++

	return func() { m.subscriptions[prev.ID] = prev; m.Updates-- }, nil
}

func (m *MemoryBillingStore) PaymentRecorded(ctx context.Context, gatewayReference string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check payment history: %w: %w", utils.ErrDatabaseError, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckErr != nil {
		return false, m.CheckErr
	}
	if gatewayReference == "" {
		return false, nil
	}
	for _, h := range m.history {
		if h.GatewayReference == gatewayReference {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryBillingStore) AppendPaymentHistory(ctx context.Context, entry *dbm.PaymentHistory) error {
	_, err := m.appendEntry(ctx, entry)
	return err
}

func (m *MemoryBillingStore) appendEntry(ctx context.Context, entry *dbm.PaymentHistory) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("append payment history: %w: %w", utils.ErrDatabaseError, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return nil, m.AppendErr
	}
	if entry.GatewayReference != "" {
		for _, h := range m.history {
			if h.GatewayReference == entry.GatewayReference {
				return nil, fmt.Errorf("append payment history: %w", utils.ErrDuplicateRecord)
			}
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = utils.NowUnixSeconds()
	m.history = append(m.history, *entry)

	id := entry.ID
	return func() {
		for i, h := range m.history {
			if h.ID == id {
				m.history = append(m.history[:i], m.history[i+1:]...)
				return
			}
		}
	}, nil
}

// WithinTransaction records an undo step for every write and replays them
// in reverse when fn fails.
func (m *MemoryBillingStore) WithinTransaction(ctx context.Context, fn func(store repositories.BillingStore) error) error {
	tx := &memoryTx{parent: m}
	if err := fn(tx); err != nil {
		m.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

type memoryTx struct {
	parent *MemoryBillingStore
	undo   []func()
}

func (t *memoryTx) FindSubscriptionByCompany(ctx context.Context, companyID string) (*dbm.Subscription, error) {
	return t.parent.FindSubscriptionByCompany(ctx, companyID)
}

func (t *memoryTx) CreateSubscription(ctx context.Context, sub *dbm.Subscription) error {
	undo, err := t.parent.create(ctx, sub)
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}

func (t *memoryTx) UpdateSubscription(ctx context.Context, sub *dbm.Subscription) error {
	undo, err := t.parent.update(ctx, sub)
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}

func (t *memoryTx) PaymentRecorded(ctx context.Context, gatewayReference string) (bool, error) {
	return t.parent.PaymentRecorded(ctx, gatewayReference)
}

func (t *memoryTx) AppendPaymentHistory(ctx context.Context, entry *dbm.PaymentHistory) error {
	undo, err := t.parent.appendEntry(ctx, entry)
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}

func (t *memoryTx) WithinTransaction(ctx context.Context, fn func(store repositories.BillingStore) error) error {
	return fn(t)
}
