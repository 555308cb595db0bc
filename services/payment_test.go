package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "coursehub/errors"
	"coursehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderStore struct {
	orders    map[int]*models.Order
	nextID    int
	markPaidN int
	createErr error
	markFailN int
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: map[int]*models.Order{}, nextID: 1}
}

func (m *mockOrderStore) Create(_ context.Context, o *models.Order) (int, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	id := m.nextID
	m.nextID++
	copied := *o
	copied.ID = id
	m.orders[id] = &copied
	return id, nil
}

func (m *mockOrderStore) GetByID(_ context.Context, id int) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderStore) GetByRazorpayOrderID(_ context.Context, razorpayOrderID string) (*models.Order, error) {
	for _, o := range m.orders {
		if o.RazorpayOrderID == razorpayOrderID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockOrderStore) MarkPaid(_ context.Context, id int, paymentID, signature string, paidAt time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	if o.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}
	m.markPaidN++
	o.PaymentStatus = models.PaymentStatusPaid
	o.OrderStatus = models.OrderStatusConfirmed
	o.RazorpayPaymentID = paymentID
	o.RazorpaySignature = signature
	o.PaymentDate = &paidAt
	return nil
}

func (m *mockOrderStore) MarkFailed(_ context.Context, id int, paymentID string) error {
	o, ok := m.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	if o.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}
	m.markFailN++
	o.PaymentStatus = models.PaymentStatusFailed
	o.OrderStatus = models.OrderStatusFailed
	o.RazorpayPaymentID = paymentID
	return nil
}

type mockGateway struct {
	orderID string
	err     error

	gotAmount  int64
	gotReceipt string
}

func (m *mockGateway) CreateIntent(amountInPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	m.gotAmount = amountInPaise
	m.gotReceipt = receipt
	if m.err != nil {
		return "", m.err
	}
	return m.orderID, nil
}

type mockGranter struct {
	grants []models.CourseGrant
	err    error
}

func (m *mockGranter) Grant(_ context.Context, g models.CourseGrant) error {
	if m.err != nil {
		return m.err
	}
	m.grants = append(m.grants, g)
	return nil
}

const testKeySecret = "test_secret_key"

func newTestOrderService(store *mockOrderStore, gw *mockGateway, granter *mockGranter) *OrderService {
	return &OrderService{
		Orders:    store,
		Gateway:   gw,
		Access:    granter,
		KeyID:     "rzp_test_key",
		KeySecret: testKeySecret,
	}
}

func validCreateRequest() CreateOrderRequest {
	return CreateOrderRequest{
		UserID:         7,
		UserName:       "Asha",
		UserEmail:      "asha@example.com",
		CourseID:       42,
		CourseTitle:    "Distributed Systems",
		CoursePricing:  499.99,
		InstructorID:   3,
		InstructorName: "Prof. Rao",
	}
}

func TestAmountInPaise(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{0, 0},
		{1, 100},
		{49.99, 4999},
		{499.99, 49999},
		{0.1, 10},
		{19.99, 1999},
		{999999.99, 99999999},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountInPaise(tt.price), "price %v", tt.price)
	}
}

func TestVerifySignature(t *testing.T) {
	orderID := "order_abc123"
	paymentID := "pay_xyz789"
	valid := ComputeSignature(orderID, paymentID, testKeySecret)

	assert.True(t, VerifySignature(orderID, paymentID, valid, testKeySecret))

	// Flipping one character must break verification.
	tampered := []byte(valid)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	assert.False(t, VerifySignature(orderID, paymentID, string(tampered), testKeySecret))

	// Signature over different ids does not transfer.
	assert.False(t, VerifySignature("order_other", paymentID, valid, testKeySecret))
	assert.False(t, VerifySignature(orderID, "pay_other", valid, testKeySecret))

	// Empty inputs never verify.
	assert.False(t, VerifySignature(orderID, paymentID, "", testKeySecret))
	assert.False(t, VerifySignature(orderID, paymentID, valid, ""))
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), &mockGateway{orderID: "order_x"}, &mockGranter{})

	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"missing user", func(r *CreateOrderRequest) { r.UserID = 0 }},
		{"missing email", func(r *CreateOrderRequest) { r.UserEmail = "" }},
		{"missing course", func(r *CreateOrderRequest) { r.CourseID = 0 }},
		{"missing title", func(r *CreateOrderRequest) { r.CourseTitle = "" }},
		{"zero price", func(r *CreateOrderRequest) { r.CoursePricing = 0 }},
		{"negative price", func(r *CreateOrderRequest) { r.CoursePricing = -10 }},
		{"missing instructor", func(r *CreateOrderRequest) { r.InstructorID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := svc.CreateOrder(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
		})
	}
}

func TestCreateOrderSuccess(t *testing.T) {
	store := newMockOrderStore()
	gw := &mockGateway{orderID: "order_live_1"}
	svc := newTestOrderService(store, gw, &mockGranter{})

	resp, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "order_live_1", resp.RazorpayOrderID)
	assert.Equal(t, int64(49999), resp.Amount)
	assert.Equal(t, int64(49999), gw.gotAmount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.Key)
	assert.True(t, strings.HasPrefix(resp.Receipt, "receipt_42_7_"), "receipt %q", resp.Receipt)

	stored, err := store.GetByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, stored.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, int64(49999), stored.AmountInPaise)
	assert.Equal(t, "order_live_1", stored.RazorpayOrderID)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	store := newMockOrderStore()
	gw := &mockGateway{err: errors.New("upstream 502")}
	svc := newTestOrderService(store, gw, &mockGranter{})

	_, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.Gateway, apperrors.KindOf(err))
	assert.Empty(t, store.orders, "no order row on gateway failure")
}

func createPendingOrder(t *testing.T, svc *OrderService, store *mockOrderStore) *models.Order {
	t.Helper()
	resp, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)
	order, err := store.GetByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	return order
}

func signedVerifyRequest(order *models.Order, paymentID string) VerifyPaymentRequest {
	return VerifyPaymentRequest{
		RazorpayPaymentID: paymentID,
		RazorpayOrderID:   order.RazorpayOrderID,
		RazorpaySignature: ComputeSignature(order.RazorpayOrderID, paymentID, testKeySecret),
		OrderID:           order.ID,
	}
}

func TestVerifyAndFinalizeSuccess(t *testing.T) {
	store := newMockOrderStore()
	granter := &mockGranter{}
	svc := newTestOrderService(store, &mockGateway{orderID: "order_ok"}, granter)
	pending := createPendingOrder(t, svc, store)

	order, err := svc.VerifyAndFinalize(context.Background(), signedVerifyRequest(pending, "pay_1"))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, order.OrderStatus)
	assert.Equal(t, "pay_1", order.RazorpayPaymentID)
	require.NotNil(t, order.PaymentDate)

	require.Len(t, granter.grants, 1)
	assert.Equal(t, 7, granter.grants[0].UserID)
	assert.Equal(t, 42, granter.grants[0].CourseID)
	assert.Equal(t, 499.99, granter.grants[0].PricePaid)
}

func TestVerifyAndFinalizeTamperedSignature(t *testing.T) {
	store := newMockOrderStore()
	granter := &mockGranter{}
	svc := newTestOrderService(store, &mockGateway{orderID: "order_ok"}, granter)
	pending := createPendingOrder(t, svc, store)

	req := signedVerifyRequest(pending, "pay_1")
	flip := byte('0')
	if req.RazorpaySignature[len(req.RazorpaySignature)-1] == '0' {
		flip = '1'
	}
	req.RazorpaySignature = req.RazorpaySignature[:len(req.RazorpaySignature)-1] + string(flip)

	_, err := svc.VerifyAndFinalize(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.PaymentRejected, apperrors.KindOf(err))

	// The stored order must be untouched.
	stored, _ := store.GetByID(context.Background(), pending.ID)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Empty(t, granter.grants)
	assert.Zero(t, store.markPaidN)
}

func TestVerifyAndFinalizeMissingFields(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), &mockGateway{}, &mockGranter{})
	_, err := svc.VerifyAndFinalize(context.Background(), VerifyPaymentRequest{OrderID: 1})
	require.Error(t, err)
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
}

func TestVerifyAndFinalizeUnknownOrder(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), &mockGateway{}, &mockGranter{})
	req := VerifyPaymentRequest{
		RazorpayPaymentID: "pay_1",
		RazorpayOrderID:   "order_ghost",
		RazorpaySignature: ComputeSignature("order_ghost", "pay_1", testKeySecret),
		OrderID:           99,
	}
	_, err := svc.VerifyAndFinalize(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestVerifyAndFinalizeForeignGatewayOrder(t *testing.T) {
	store := newMockOrderStore()
	granter := &mockGranter{}
	svc := newTestOrderService(store, &mockGateway{orderID: "order_mine"}, granter)
	pending := createPendingOrder(t, svc, store)

	// Valid signature, but over a different checkout's gateway order id.
	req := VerifyPaymentRequest{
		RazorpayPaymentID: "pay_1",
		RazorpayOrderID:   "order_other",
		RazorpaySignature: ComputeSignature("order_other", "pay_1", testKeySecret),
		OrderID:           pending.ID,
	}
	_, err := svc.VerifyAndFinalize(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.PaymentRejected, apperrors.KindOf(err))
	assert.Empty(t, granter.grants)
}

func TestVerifyAndFinalizeIdempotent(t *testing.T) {
	store := newMockOrderStore()
	granter := &mockGranter{}
	svc := newTestOrderService(store, &mockGateway{orderID: "order_ok"}, granter)
	pending := createPendingOrder(t, svc, store)
	req := signedVerifyRequest(pending, "pay_1")

	first, err := svc.VerifyAndFinalize(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.VerifyAndFinalize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.PaymentStatusPaid, second.PaymentStatus)
	assert.Equal(t, 1, store.markPaidN, "paid write happens once")
	assert.Len(t, granter.grants, 1, "access granted exactly once")
}

func TestVerifyAndFinalizeGrantFailureStillSucceeds(t *testing.T) {
	store := newMockOrderStore()
	granter := &mockGranter{err: errors.New("enrollment db down")}
	svc := newTestOrderService(store, &mockGateway{orderID: "order_ok"}, granter)
	pending := createPendingOrder(t, svc, store)

	order, err := svc.VerifyAndFinalize(context.Background(), signedVerifyRequest(pending, "pay_1"))
	require.NoError(t, err, "grant failure after the paid write is not a request failure")
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Empty(t, granter.grants)
}

func TestWebhookAndClientVerifyRace(t *testing.T) {
	store := newMockOrderStore()
	granter := &mockGranter{}
	svc := newTestOrderService(store, &mockGateway{orderID: "order_race"}, granter)
	pending := createPendingOrder(t, svc, store)

	// Webhook lands first.
	_, err := svc.FinalizeGatewayPayment(context.Background(), pending.RazorpayOrderID, "pay_1")
	require.NoError(t, err)

	// Client confirmation arrives second.
	order, err := svc.VerifyAndFinalize(context.Background(), signedVerifyRequest(pending, "pay_1"))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, 1, store.markPaidN)
	assert.Len(t, granter.grants, 1, "the race never grants twice")
}

func TestFinalizeGatewayPaymentStoresSignature(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, &mockGateway{orderID: "order_wh"}, &mockGranter{})
	pending := createPendingOrder(t, svc, store)

	order, err := svc.FinalizeGatewayPayment(context.Background(), pending.RazorpayOrderID, "pay_1")
	require.NoError(t, err)

	want := ComputeSignature(pending.RazorpayOrderID, "pay_1", testKeySecret)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "pay_1", order.RazorpayPaymentID)
	assert.Equal(t, want, order.RazorpaySignature, "a paid order always carries its signature")

	stored, _ := store.GetByID(context.Background(), pending.ID)
	assert.Equal(t, want, stored.RazorpaySignature)
}

func TestFailGatewayPayment(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, &mockGateway{orderID: "order_f"}, &mockGranter{})
	pending := createPendingOrder(t, svc, store)

	require.NoError(t, svc.FailGatewayPayment(context.Background(), pending.RazorpayOrderID, "pay_bad"))
	stored, _ := store.GetByID(context.Background(), pending.ID)
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusFailed, stored.OrderStatus)
	assert.Equal(t, 1, store.markFailN)
}

func TestFailGatewayPaymentNeverDowngradesPaid(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, &mockGateway{orderID: "order_g"}, &mockGranter{})
	pending := createPendingOrder(t, svc, store)

	_, err := svc.VerifyAndFinalize(context.Background(), signedVerifyRequest(pending, "pay_1"))
	require.NoError(t, err)

	require.NoError(t, svc.FailGatewayPayment(context.Background(), pending.RazorpayOrderID, "pay_1"))
	stored, _ := store.GetByID(context.Background(), pending.ID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestGetOrder(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, &mockGateway{orderID: "order_h"}, &mockGranter{})
	pending := createPendingOrder(t, svc, store)

	got, err := svc.GetOrder(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), 404404)
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestReceiptFormat(t *testing.T) {
	// Two orders for the same buyer and course still get distinct receipts.
	store := newMockOrderStore()
	gw := &mockGateway{orderID: "order_r1"}
	svc := newTestOrderService(store, gw, &mockGranter{})

	first, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	gw.orderID = "order_r2"
	second, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.Receipt, second.Receipt)
	for _, receipt := range []string{first.Receipt, second.Receipt} {
		var courseID, userID int
		var ts int64
		_, scanErr := fmt.Sscanf(receipt, "receipt_%d_%d_%d", &courseID, &userID, &ts)
		require.NoError(t, scanErr)
		assert.Equal(t, 42, courseID)
		assert.Equal(t, 7, userID)
	}
}
