package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mibe/internal/infra"
	dbm "mibe/internal/models/db_models"
	"mibe/internal/repositories"
)

type fakeSubRepo struct {
	rows       map[string]repositories.SubscriptionRow
	excess     []repositories.ExcessRow
	history    map[string][]dbm.PaymentHistory
	companies  []repositories.CompanyOptionRow
	byPlan     map[string]int64
	lastFilter repositories.SubscriptionFilter
	created    []dbm.Subscription
	updates    map[string]map[string]interface{}
	err        error
	createErr  error
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{
		rows:    map[string]repositories.SubscriptionRow{},
		history: map[string][]dbm.PaymentHistory{},
		byPlan:  map[string]int64{},
		updates: map[string]map[string]interface{}{},
	}
}

func (f *fakeSubRepo) add(sub dbm.Subscription) repositories.SubscriptionRow {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	row := repositories.SubscriptionRow{Subscription: sub}
	f.rows[sub.ID.String()] = row
	return row
}

func (f *fakeSubRepo) List(_ context.Context, filter repositories.SubscriptionFilter) ([]repositories.SubscriptionRow, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	out := make([]repositories.SubscriptionRow, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSubRepo) GetByID(_ context.Context, id string) (*repositories.SubscriptionRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.rows[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeSubRepo) GetByCompanyID(_ context.Context, companyID string) (*repositories.SubscriptionRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.CompanyID == companyID {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeSubRepo) Create(_ context.Context, sub *dbm.Subscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.CompanyID == sub.CompanyID {
			return gorm.ErrDuplicatedKey
		}
	}
	sub.ID = uuid.New()
	f.created = append(f.created, *sub)
	f.add(*sub)
	return nil
}

func (f *fakeSubRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.updates[id] = fields
	if v, ok := fields["plan_id"].(string); ok {
		row.PlanID = v
	}
	if v, ok := fields["status"].(dbm.SubscriptionStatus); ok {
		row.Status = v
	}
	f.rows[id] = row
	return nil
}

func (f *fakeSubRepo) ListWithExcess(context.Context) ([]repositories.SubscriptionRow, error) {
	return nil, f.err
}

func (f *fakeSubRepo) ExcessRows(context.Context) ([]repositories.ExcessRow, error) {
	return f.excess, f.err
}

func (f *fakeSubRepo) CompaniesWithoutSubscription(context.Context) ([]repositories.CompanyOptionRow, error) {
	return f.companies, f.err
}

func (f *fakeSubRepo) PaymentHistory(_ context.Context, subscriptionID string) ([]dbm.PaymentHistory, error) {
	return f.history[subscriptionID], f.err
}

func (f *fakeSubRepo) CountByPlan(_ context.Context, planID string) (int64, error) {
	return f.byPlan[planID], f.err
}

type fakePlanRepo struct {
	plans   map[string]dbm.Plan
	updates map[string]map[string]interface{}
	err     error
}

func newFakePlanRepo(plans ...dbm.Plan) *fakePlanRepo {
	f := &fakePlanRepo{plans: map[string]dbm.Plan{}, updates: map[string]map[string]interface{}{}}
	for _, p := range plans {
		f.plans[p.ID.String()] = p
	}
	return f
}

func (f *fakePlanRepo) GetPlanInfoById(_ context.Context, planID string) (*dbm.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.plans[planID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakePlanRepo) GetAllPlans(context.Context) ([]dbm.Plan, error) {
	out := make([]dbm.Plan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, p)
	}
	return out, f.err
}

func (f *fakePlanRepo) GetActivePlans(ctx context.Context) ([]dbm.Plan, error) {
	all, err := f.GetAllPlans(ctx)
	var out []dbm.Plan
	for _, p := range all {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, err
}

func (f *fakePlanRepo) Create(_ context.Context, plan *dbm.Plan) error {
	if f.err != nil {
		return f.err
	}
	plan.ID = uuid.New()
	f.plans[plan.ID.String()] = *plan
	return nil
}

func (f *fakePlanRepo) Update(_ context.Context, planID string, fields map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	p, ok := f.plans[planID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.updates[planID] = fields
	if v, ok := fields["is_active"].(bool); ok {
		p.IsActive = v
	}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	f.plans[planID] = p
	return nil
}

type fakeDashboardRepo struct {
	companies  int64
	byStatus   map[dbm.SubscriptionStatus]int64
	revenue    []repositories.BucketSum
	active     []repositories.SubWithPlan
	mix        []repositories.PlanMixRow
	recent     []repositories.RecentPaymentRow
	seriesArgs struct {
		start, end   time.Time
		interval, tz string
	}
	err error
}

func (f *fakeDashboardRepo) CountCompanies(context.Context) (int64, error) {
	return f.companies, f.err
}

func (f *fakeDashboardRepo) CountSubscriptionsByStatus(_ context.Context, status dbm.SubscriptionStatus) (int64, error) {
	return f.byStatus[status], f.err
}

func (f *fakeDashboardRepo) RevenueSeries(_ context.Context, start, end time.Time, interval, tz string) ([]repositories.BucketSum, error) {
	f.seriesArgs.start, f.seriesArgs.end = start, end
	f.seriesArgs.interval, f.seriesArgs.tz = interval, tz
	return f.revenue, f.err
}

func (f *fakeDashboardRepo) ActiveSubscriptionsWithPlan(context.Context) ([]repositories.SubWithPlan, error) {
	return f.active, f.err
}

func (f *fakeDashboardRepo) PlanMix(context.Context) ([]repositories.PlanMixRow, error) {
	return f.mix, f.err
}

func (f *fakeDashboardRepo) RecentPayments(context.Context, int) ([]repositories.RecentPaymentRow, error) {
	return f.recent, f.err
}

type fakeAccountRepo struct {
	byEmail   map[string]dbm.Account
	inserted  []dbm.Account
	err       error
	insertErr error
}

func (f *fakeAccountRepo) Insert(_ context.Context, account *dbm.Account) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	account.ID = uuid.New()
	f.inserted = append(f.inserted, *account)
	return nil
}

func (f *fakeAccountRepo) FindById(context.Context, string) (*dbm.Account, error) {
	return nil, f.err
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*dbm.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.byEmail[email]; ok {
		return &a, nil
	}
	return nil, nil
}

type fakeCompanyRepo struct {
	companies map[string]dbm.Company
	linked    map[string]string
	setErr    error
}

func (f *fakeCompanyRepo) FindById(_ context.Context, id string) (*dbm.Company, error) {
	if c, ok := f.companies[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCompanyRepo) SetAsaasCustomerID(_ context.Context, id, customerID string) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.linked == nil {
		f.linked = map[string]string{}
	}
	f.linked[id] = customerID
	return nil
}

type fakeAsaasClient struct {
	inputs []infra.AsaasCustomerInput
	err    error
}

func (f *fakeAsaasClient) CreateCustomer(_ context.Context, in infra.AsaasCustomerInput) (*infra.AsaasCustomer, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &infra.AsaasCustomer{
		ID:                "cus_000001",
		Name:              in.Name,
		CpfCnpj:           in.CpfCnpj,
		Email:             in.Email,
		ExternalReference: in.ExternalReference,
	}, nil
}
