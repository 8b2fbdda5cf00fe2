package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"mibe/internal/infra"
	dbm "mibe/internal/models/db_models"
	"mibe/internal/repositories/repotest"
	"mibe/pkg/utils"
)

var fixedNow = time.Date(2025, 3, 15, 14, 30, 0, 0, utils.Location())

func newTestReconciler(store *repotest.MemoryBillingStore) *reconcileService {
	return &reconcileService{
		store:  store,
		logger: zap.NewNop(),
		now:    func() time.Time { return fixedNow },
	}
}

func received(id, ref string, value string) PaymentReceivedEvent {
	return PaymentReceivedEvent{Payment: GatewayPayment{
		ID:                id,
		Value:             decimal.RequireFromString(value),
		ExternalReference: ref,
	}}
}

func TestReceivedCreatesSubscriptionAndHistory(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	due := time.Date(2025, 3, 10, 0, 0, 0, 0, utils.Location())
	event := received("pay_1", "company_A_plan_P1", "149.90")
	event.Payment.DueDate = &due

	require.NoError(t, svc.Handle(context.Background(), event))

	sub, ok := store.Subscription("A")
	require.True(t, ok)
	assert.Equal(t, "P1", sub.PlanID)
	assert.Equal(t, dbm.SubStatusActive, sub.Status)
	require.NotNil(t, sub.StartedAt)
	assert.Equal(t, fixedNow.Unix(), *sub.StartedAt)

	history := store.History()
	require.Len(t, history, 1)
	h := history[0]
	assert.Equal(t, sub.ID, h.SubscriptionID)
	assert.True(t, decimal.RequireFromString("149.90").Equal(h.Amount))
	assert.True(t, h.Amount.Equal(h.BaseAmount))
	assert.True(t, h.ExcessAmount.IsZero())
	assert.Equal(t, dbm.PaymentStatusPaid, h.Status)
	require.NotNil(t, h.PaymentDate)
	assert.Equal(t, fixedNow.Unix(), *h.PaymentDate)
	assert.Equal(t, "2025-03-10", time.Time(h.DueDate).Format(utils.DateLayout))
	assert.Equal(t, "pay_1", h.GatewayReference)
}

func TestReceivedWithoutDueDateUsesToday(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "10")))

	history := store.History()
	require.Len(t, history, 1)
	assert.Equal(t, "2025-03-15", time.Time(history[0].DueDate).Format(utils.DateLayout))
}

func TestRedeliveryIsIdempotent(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)
	event := received("pay_1", "company_A_plan_P1", "99.00")

	require.NoError(t, svc.Handle(context.Background(), event))
	first, _ := store.Subscription("A")

	// Later redelivery must not touch the row again.
	svc.now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	require.NoError(t, svc.Handle(context.Background(), event))
	require.NoError(t, svc.Handle(context.Background(), PaymentReceivedEvent{Confirmed: true, Payment: event.Payment}))

	assert.Len(t, store.Subscriptions(), 1)
	assert.Len(t, store.History(), 1)
	second, _ := store.Subscription("A")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Creates)
	assert.Equal(t, 0, store.Updates)
}

func TestTopLevelReferenceWinsOverMetadata(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	event := received("pay_1", "company_A_plan_P1", "50")
	event.Payment.MetadataReference = "company_B_plan_P2"
	require.NoError(t, svc.Handle(context.Background(), event))

	sub, ok := store.Subscription("A")
	require.True(t, ok)
	assert.Equal(t, "P1", sub.PlanID)
	_, ok = store.Subscription("B")
	assert.False(t, ok)
}

func TestMetadataReferenceIsUsedWhenTopLevelIsEmpty(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	event := received("pay_1", "", "50")
	event.Payment.MetadataReference = "company_B_plan_P2"
	require.NoError(t, svc.Handle(context.Background(), event))

	sub, ok := store.Subscription("B")
	require.True(t, ok)
	assert.Equal(t, "P2", sub.PlanID)
}

func TestReceivedReactivatesAndKeepsStartDate(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	started := fixedNow.Add(-90 * 24 * time.Hour).Unix()
	seeded := store.Seed(dbm.Subscription{
		CompanyID: "A",
		PlanID:    "P1",
		Status:    dbm.SubStatusOverdue,
		StartedAt: &started,
	})
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), received("pay_2", "company_A_plan_P1", "99")))

	sub, _ := store.Subscription("A")
	assert.Equal(t, seeded.ID, sub.ID)
	assert.Equal(t, dbm.SubStatusActive, sub.Status)
	require.NotNil(t, sub.StartedAt)
	assert.Equal(t, started, *sub.StartedAt)
	assert.Equal(t, 0, store.Creates)
	assert.Equal(t, 1, store.Updates)
}

func TestReceivedSetsStartDateOnAdminCreatedSubscription(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P1", Status: dbm.SubStatusActive})
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "99")))

	sub, _ := store.Subscription("A")
	require.NotNil(t, sub.StartedAt)
	assert.Equal(t, fixedNow.Unix(), *sub.StartedAt)
}

func TestReceivedSwitchesPlan(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "99")))
	switched := received("pay_2", "company_A_plan_P2", "199")
	switched.Confirmed = true
	require.NoError(t, svc.Handle(context.Background(), switched))

	subs := store.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, "P2", subs[0].PlanID)
	assert.Equal(t, dbm.SubStatusActive, subs[0].Status)

	history := store.History()
	require.Len(t, history, 2)
	for _, h := range history {
		assert.Equal(t, subs[0].ID, h.SubscriptionID)
	}
}

func TestReceivedRejectsBadReferencesWithoutWriting(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want error
	}{
		{"missing", "", utils.ErrMissingReference},
		{"blank", "   ", utils.ErrMissingReference},
		{"free text", "not-a-valid-format", utils.ErrMalformedReference},
		{"no plan", "company_A", utils.ErrMalformedReference},
		{"wrong prefix", "store_A_plan_P1", utils.ErrMalformedReference},
		{"trailing garbage", "company_A_plan_P1 extra", utils.ErrMalformedReference},
		{"empty ids", "company__plan_", utils.ErrMalformedReference},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := repotest.NewMemoryBillingStore()
			svc := newTestReconciler(store)

			err := svc.Handle(context.Background(), received("pay_1", tc.ref, "10"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 400, utils.WebhookStatus(err))
			assert.Empty(t, store.Subscriptions())
			assert.Empty(t, store.History())
		})
	}
}

func TestOverdueMarksExistingSubscription(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	started := fixedNow.Unix()
	store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P1", Status: dbm.SubStatusActive, StartedAt: &started})
	svc := newTestReconciler(store)

	err := svc.Handle(context.Background(), PaymentOverdueEvent{Payment: GatewayPayment{ID: "pay_9", ExternalReference: "company_A_plan_P1"}})
	require.NoError(t, err)

	sub, _ := store.Subscription("A")
	assert.Equal(t, dbm.SubStatusOverdue, sub.Status)
	assert.Equal(t, "P1", sub.PlanID)
	assert.Equal(t, started, *sub.StartedAt)
	assert.Empty(t, store.History())
}

func TestOverdueAcceptsCompanyOnlyReference(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P1", Status: dbm.SubStatusActive})
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), PaymentOverdueEvent{Payment: GatewayPayment{ID: "pay_9", ExternalReference: "company_A"}}))

	sub, _ := store.Subscription("A")
	assert.Equal(t, dbm.SubStatusOverdue, sub.Status)
}

func TestOverdueWithoutSubscriptionIsNoop(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), PaymentOverdueEvent{Payment: GatewayPayment{ID: "pay_9", ExternalReference: "company_Z_plan_P1"}}))

	assert.Empty(t, store.Subscriptions())
	assert.Equal(t, 0, store.Creates)
}

func TestOverdueWithUnusableReferenceIsNoop(t *testing.T) {
	for _, ref := range []string{"", "not-a-reference"} {
		store := repotest.NewMemoryBillingStore()
		store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P1", Status: dbm.SubStatusActive})
		svc := newTestReconciler(store)

		require.NoError(t, svc.Handle(context.Background(), PaymentOverdueEvent{Payment: GatewayPayment{ID: "pay_9", ExternalReference: ref}}))

		sub, _ := store.Subscription("A")
		assert.Equal(t, dbm.SubStatusActive, sub.Status, "ref %q", ref)
	}
}

func TestOverdueForRecordedPaymentIsStale(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "99")))
	require.NoError(t, svc.Handle(context.Background(), PaymentOverdueEvent{Payment: GatewayPayment{ID: "pay_1", ExternalReference: "company_A_plan_P1"}}))

	sub, _ := store.Subscription("A")
	assert.Equal(t, dbm.SubStatusActive, sub.Status)
	assert.Equal(t, 0, store.Updates)
}

func TestUnknownEventChangesNothing(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P1", Status: dbm.SubStatusActive})
	svc := newTestReconciler(store)

	require.NoError(t, svc.Handle(context.Background(), UnknownEvent{Kind: "PAYMENT_REFUNDED"}))

	assert.Equal(t, 0, store.Creates)
	assert.Equal(t, 0, store.Updates)
	assert.Empty(t, store.History())
}

func TestDuplicateSubscriptionsAreRefused(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P1", Status: dbm.SubStatusActive})
	store.Seed(dbm.Subscription{CompanyID: "A", PlanID: "P2", Status: dbm.SubStatusOverdue})
	svc := newTestReconciler(store)

	err := svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "99"))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrDataIntegrity)
	assert.Equal(t, 500, utils.WebhookStatus(err))
	assert.Equal(t, 0, store.Updates)
	assert.Empty(t, store.History())

	err = svc.Handle(context.Background(), PaymentOverdueEvent{Payment: GatewayPayment{ID: "pay_2", ExternalReference: "company_A_plan_P1"}})
	assert.ErrorIs(t, err, utils.ErrDataIntegrity)
}

func TestStorageFailuresAreServerErrors(t *testing.T) {
	boom := errors.New("connection reset")
	cases := map[string]func(*repotest.MemoryBillingStore){
		"check":  func(s *repotest.MemoryBillingStore) { s.CheckErr = boom },
		"find":   func(s *repotest.MemoryBillingStore) { s.FindErr = boom },
		"create": func(s *repotest.MemoryBillingStore) { s.CreateErr = boom },
		"append": func(s *repotest.MemoryBillingStore) { s.AppendErr = boom },
	}

	for name, inject := range cases {
		t.Run(name, func(t *testing.T) {
			store := repotest.NewMemoryBillingStore()
			inject(store)
			svc := newTestReconciler(store)

			err := svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "99"))
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, 500, utils.WebhookStatus(err))
		})
	}
}

func TestFailedAppendRollsBackSubscriptionWrite(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	store.Seed(dbm.Subscription{CompanyID: "B", PlanID: "P1", Status: dbm.SubStatusOverdue})
	store.AppendErr = errors.New("disk full")
	svc := newTestReconciler(store)

	require.Error(t, svc.Handle(context.Background(), received("pay_1", "company_A_plan_P1", "99")))
	require.Error(t, svc.Handle(context.Background(), received("pay_2", "company_B_plan_P2", "99")))

	_, ok := store.Subscription("A")
	assert.False(t, ok)
	sub, _ := store.Subscription("B")
	assert.Equal(t, dbm.SubStatusOverdue, sub.Status)
	assert.Equal(t, "P1", sub.PlanID)
	assert.Empty(t, store.History())
}

func TestCanceledContextFailsWithoutWriting(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	svc := newTestReconciler(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Handle(ctx, received("pay_1", "company_A_plan_P1", "99"))
	assert.ErrorIs(t, err, utils.ErrDatabaseError)
	assert.Empty(t, store.Subscriptions())
}

// Two first payments for the same company race past the lookup; the loser
// hits the unique constraint and its retry takes the update path.
func TestConcurrentFirstPaymentsCreateOneSubscription(t *testing.T) {
	store := repotest.NewMemoryBillingStore()

	var (
		finds   atomic.Int32
		barrier sync.WaitGroup
	)
	barrier.Add(2)
	store.AfterFind = func(string) {
		if finds.Add(1) <= 2 {
			barrier.Done()
			barrier.Wait()
		}
	}

	reg := prometheus.NewRegistry()
	svc := newTestReconciler(store)
	svc.metrics = infra.NewWebhookMetrics(reg)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"pay_1", "pay_2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = svc.Handle(context.Background(), received(id, "company_A_plan_P1", "99"))
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	subs := store.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, dbm.SubStatusActive, subs[0].Status)

	history := store.History()
	require.Len(t, history, 2)
	for _, h := range history {
		assert.Equal(t, subs[0].ID, h.SubscriptionID)
	}

	assert.Equal(t, 1.0, counterValue(t, reg, "mibe_webhook_conflict_retries_total", nil))
	assert.Equal(t, 2.0, counterValue(t, reg, "mibe_webhook_events_total",
		map[string]string{"event": EventPaymentReceived, "outcome": outcomeApplied}))
}

func TestHandlePayloadCountsOutcomes(t *testing.T) {
	store := repotest.NewMemoryBillingStore()
	reg := prometheus.NewRegistry()
	svc := newTestReconciler(store)
	svc.metrics = infra.NewWebhookMetrics(reg)
	ctx := context.Background()

	body := []byte(`{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_1","value":10,"externalReference":"company_A_plan_P1"}}`)
	require.NoError(t, svc.HandlePayload(ctx, body))
	require.NoError(t, svc.HandlePayload(ctx, body))
	require.NoError(t, svc.HandlePayload(ctx, []byte(`{"event":"PAYMENT_DELETED"}`)))
	assert.ErrorIs(t, svc.HandlePayload(ctx, []byte(`{`)), utils.ErrInvalidPayload)
	assert.ErrorIs(t, svc.HandlePayload(ctx,
		[]byte(`{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_2","externalReference":"bogus"}}`)), utils.ErrMalformedReference)

	events := func(event, outcome string) float64 {
		return counterValue(t, reg, "mibe_webhook_events_total", map[string]string{"event": event, "outcome": outcome})
	}
	assert.Equal(t, 1.0, events(EventPaymentConfirmed, outcomeApplied))
	assert.Equal(t, 1.0, events(EventPaymentConfirmed, outcomeDuplicate))
	assert.Equal(t, 1.0, events("other", outcomeIgnored))
	assert.Equal(t, 1.0, events("invalid", outcomeRejected))
	assert.Equal(t, 1.0, events(EventPaymentReceived, outcomeRejected))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
