package services

import (
	"context"
	"database/sql"
	"time"

	"coursehub/db"
	apperrors "coursehub/errors"
	"coursehub/models"
)

// Analytics periods
const (
	PeriodToday      = "today"
	PeriodWeek       = "week"
	PeriodMonth      = "month"
	PeriodLast7Days  = "last7days"
	PeriodLast30Days = "last30days"
)

const refundWindowDays = 30

const displayDateFormat = "Jan 02, 2006 • 03:04 PM"

// OrderLister reads order history for reporting
type OrderLister interface {
	GetByID(ctx context.Context, id int) (*models.Order, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error)
}

// AnalyticsService aggregates order history for the sales dashboard
type AnalyticsService struct {
	Orders OrderLister

	// Now is the clock, replaceable in tests
	Now func() time.Time
}

// NewAnalyticsService wires the analytics service to the database
func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{
		Orders: db.NewOrderStore(db.DB),
		Now:    time.Now,
	}
}

// AnalyticsSummary aggregates one reporting window
type AnalyticsSummary struct {
	TotalOrders      int     `json:"totalOrders"`
	SuccessfulOrders int     `json:"successfulOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	FailedOrders     int     `json:"failedOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ConversionRate   float64 `json:"conversionRate"`
}

// AnalyticsReport is the full dashboard payload for one period
type AnalyticsReport struct {
	Period    string `json:"period"`
	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"dateRange"`
	Summary AnalyticsSummary       `json:"summary"`
	Orders  []models.OrderResponse `json:"orders"`
}

// PeriodRange resolves a named reporting period to its [start, end] window.
// Unknown periods fall back to today.
func PeriodRange(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeek:
		// Week starts on Sunday.
		start := startOfDay(now.AddDate(0, 0, -int(now.Weekday())))
		return start, endOfDay(start.AddDate(0, 0, 6))
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, endOfDay(start.AddDate(0, 1, -1))
	case PeriodLast7Days:
		return now.AddDate(0, 0, -7), now
	case PeriodLast30Days:
		return now.AddDate(0, 0, -30), now
	default:
		return startOfDay(now), endOfDay(now)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// GetOrderAnalytics aggregates the orders created in the requested period
func (s *AnalyticsService) GetOrderAnalytics(ctx context.Context, period string) (*AnalyticsReport, error) {
	if period == "" {
		period = PeriodToday
	}

	now := s.Now()
	start, end := PeriodRange(period, now)

	orders, err := s.Orders.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "Error fetching order analytics", err)
	}

	report := &AnalyticsReport{Period: period}
	report.DateRange.Start = start.Format("2006-01-02")
	report.DateRange.End = end.Format("2006-01-02")
	report.Summary = Summarize(orders)

	report.Orders = make([]models.OrderResponse, 0, len(orders))
	for i := range orders {
		report.Orders = append(report.Orders, orders[i].ToResponse())
	}
	return report, nil
}

// Summarize computes the dashboard summary for a set of orders. Revenue only
// counts paid orders.
func Summarize(orders []models.Order) AnalyticsSummary {
	var sum AnalyticsSummary
	sum.TotalOrders = len(orders)
	for i := range orders {
		switch orders[i].PaymentStatus {
		case models.PaymentStatusPaid:
			sum.SuccessfulOrders++
			sum.TotalRevenue += orders[i].CoursePricing
		case models.PaymentStatusPending:
			sum.PendingOrders++
		case models.PaymentStatusFailed:
			sum.FailedOrders++
		}
	}
	if sum.TotalOrders > 0 {
		sum.ConversionRate = float64(sum.SuccessfulOrders) / float64(sum.TotalOrders) * 100
	}
	return sum
}

// OrderDates is the human-readable date view of an order
type OrderDates struct {
	OrderDate   string `json:"orderDate"`
	PaymentDate string `json:"paymentDate,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// OrderInfo bundles refund eligibility with formatted dates
type OrderInfo struct {
	RefundInfo         models.RefundInfo `json:"refundInfo"`
	FormattedDates     OrderDates        `json:"formattedDates"`
	PaymentLinkExpired bool              `json:"paymentLinkExpired"`
}

// GetOrderInfo returns refund eligibility and display dates for one order
func (s *AnalyticsService) GetOrderInfo(ctx context.Context, orderID int) (*OrderInfo, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, apperrors.E(apperrors.Internal, "error loading order", err)
	}

	info := &OrderInfo{
		RefundInfo: RefundInfoFor(order, s.Now()),
		FormattedDates: OrderDates{
			OrderDate: order.OrderDate.Format(displayDateFormat),
			CreatedAt: order.CreatedAt.Format(displayDateFormat),
			UpdatedAt: order.UpdatedAt.Format(displayDateFormat),
		},
	}
	if order.PaymentDate != nil {
		info.FormattedDates.PaymentDate = order.PaymentDate.Format(displayDateFormat)
	}
	// An unpaid order's checkout link lives for 24 hours.
	if order.PaymentStatus != models.PaymentStatusPaid {
		info.PaymentLinkExpired = s.Now().After(order.OrderDate.AddDate(0, 0, 1))
	}
	return info, nil
}

// RefundInfoFor computes refund eligibility. Paid orders are refundable for
// 30 days from the payment date.
func RefundInfoFor(order *models.Order, now time.Time) models.RefundInfo {
	if order.PaymentDate == nil || order.PaymentStatus != models.PaymentStatusPaid {
		return models.RefundInfo{Eligible: false, Reason: "Payment not completed"}
	}

	deadline := order.PaymentDate.AddDate(0, 0, refundWindowDays)
	eligible := !now.After(deadline)

	daysRemaining := 0
	if eligible {
		daysRemaining = int(deadline.Sub(now).Hours() / 24)
	}

	return models.RefundInfo{
		Eligible:       eligible,
		DaysRemaining:  daysRemaining,
		Deadline:       deadline.Format("Jan 02, 2006"),
		DeadlinePassed: !eligible,
	}
}
