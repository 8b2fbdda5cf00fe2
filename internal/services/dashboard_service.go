package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	dbm "mibe/internal/models/db_models"
	resp "mibe/internal/models/response_models"
	"mibe/internal/repositories"
	"mibe/pkg/memcache"
	"mibe/pkg/utils"
)

// dashboardTTL bounds how stale the admin dashboard may be.
const dashboardTTL = time.Minute

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo    repositories.DashboardRepository
	subRepo repositories.ISubscriptionRepository
	cache   *memcache.TTLCache[*resp.DashboardReport]
}

func NewDashboardService(repo repositories.DashboardRepository, subRepo repositories.ISubscriptionRepository) DashboardService {
	return &dashboardService{
		repo:    repo,
		subRepo: subRepo,
		cache:   memcache.NewTTLCache[*resp.DashboardReport](dashboardTTL),
	}
}

// cacheKey is taken before normalizing so open ranges share one entry.
func cacheKey(r resp.TimeRange) string {
	return fmt.Sprintf("%d|%d|%s|%s", r.Start.Unix(), r.End.Unix(), r.Interval, r.Timezone)
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	key := cacheKey(rng)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	rng = normalizeRange(rng)

	// ---------- Core counts ----------
	totalCompanies, err := s.repo.CountCompanies(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	activeSubs, err := s.repo.CountSubscriptionsByStatus(ctx, dbm.SubStatusActive)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	overdueSubs, err := s.repo.CountSubscriptionsByStatus(ctx, dbm.SubStatusOverdue)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	cancelledSubs, err := s.repo.CountSubscriptionsByStatus(ctx, dbm.SubStatusCancelled)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	// ---------- Series ----------
	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	revenuePoints := make([]resp.SeriesPoint, 0, len(revenueRows))
	totalRevenue := decimal.Zero
	for _, r := range revenueRows {
		revenuePoints = append(revenuePoints, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		totalRevenue = totalRevenue.Add(r.Sum)
	}

	// ---------- Financials: MRR/ARPU ----------
	activeWithPlan, err := s.repo.ActiveSubscriptionsWithPlan(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	mrr, arpu := recurringRevenue(activeWithPlan)

	// ---------- Plan mix ----------
	planRows, err := s.repo.PlanMix(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	// ---------- Excess ----------
	excessRows, err := s.subRepo.ExcessRows(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	// ---------- Recent payments ----------
	payRows, err := s.repo.RecentPayments(ctx, 10)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	recent := make([]resp.RecentPayment, 0, len(payRows))
	for _, r := range payRows {
		p := resp.RecentPayment{
			ID:               r.ID,
			SubscriptionID:   r.SubscriptionID,
			CompanyName:      r.CompanyName,
			Amount:           r.Amount,
			GatewayReference: r.GatewayReference,
		}
		if r.PaymentDate != nil {
			t := utils.FromUnixSecondsBR(*r.PaymentDate)
			p.PaymentDate = &t
		}
		recent = append(recent, p)
	}

	report := &resp.DashboardReport{
		Range: rng,
		KPIs: resp.KPIBlock{
			TotalCompanies:         totalCompanies,
			ActiveSubscriptions:    activeSubs,
			OverdueSubscriptions:   overdueSubs,
			CancelledSubscriptions: cancelledSubs,
			MRR:                    mrr,
			ARPU:                   arpu,
			DelinquencyPct:         delinquencyPct(activeSubs, overdueSubs),
		},
		Revenue: resp.RevenueSeries{
			Points: revenuePoints,
			Total:  totalRevenue,
		},
		PlanMix:        resp.PlanMix{Items: planMix(planRows)},
		Excess:         BuildExcessSummary(excessRows),
		RecentPayments: recent,
	}

	s.cache.Set(key, report)
	return report, nil
}

// recurringRevenue sums plan price plus billed excess per active subscription.
func recurringRevenue(rows []repositories.SubWithPlan) (mrr, arpu decimal.Decimal) {
	mrr = decimal.Zero
	for _, r := range rows {
		mrr = mrr.Add(r.MonthlyPrice).Add(r.ExcessAmount)
	}
	arpu = decimal.Zero
	if len(rows) > 0 {
		arpu = mrr.DivRound(decimal.NewFromInt(int64(len(rows))), 2)
	}
	return mrr, arpu
}

func delinquencyPct(active, overdue int64) float64 {
	if active+overdue == 0 {
		return 0
	}
	return float64(overdue) * 100.0 / float64(active+overdue)
}

func planMix(rows []repositories.PlanMixRow) []resp.PlanMixItem {
	var total float64
	for _, r := range rows {
		total += float64(r.Count)
	}
	items := make([]resp.PlanMixItem, 0, len(rows))
	for _, r := range rows {
		var pct float64
		if total > 0 {
			pct = float64(r.Count) * 100.0 / total
		}
		items = append(items, resp.PlanMixItem{
			PlanID:       r.PlanID,
			PlanName:     r.PlanName,
			MonthlyPrice: r.MonthlyPrice,
			Count:        r.Count,
			Percent:      pct,
		})
	}
	return items
}
