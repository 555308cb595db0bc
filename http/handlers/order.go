package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	resp "coursehub/http/response"
	"coursehub/services"
)

// OrderHandler exposes order creation, payment verification and reporting
type OrderHandler struct {
	Orders    *services.OrderService
	Analytics *services.AnalyticsService
}

func NewOrderHandler(orders *services.OrderService, analytics *services.AnalyticsService) *OrderHandler {
	return &OrderHandler{Orders: orders, Analytics: analytics}
}

// Create handles POST /orders/create
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Orders.CreateOrder(r.Context(), req)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusCreated, created)
}

// Verify handles POST /orders/verify
func (h *OrderHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req services.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Orders.VerifyAndFinalize(r.Context(), req)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusOK, "Payment verified and course access granted", order.ToResponse())
}

// Get handles GET /orders/order/{orderId}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(r.PathValue("orderId"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := h.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, order.ToResponse())
}

// GetAnalytics handles GET /orders/analytics?period=
func (h *OrderHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.Analytics.GetOrderAnalytics(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, report)
}

// GetRefundInfo handles GET /orders/order/{orderId}/refund-info
func (h *OrderHandler) GetRefundInfo(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(r.PathValue("orderId"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	info, err := h.Analytics.GetOrderInfo(r.Context(), orderID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, info)
}
