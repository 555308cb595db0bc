package models

import "time"

// Order statuses
const (
	OrderStatusCreated   = "created"
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusFailed    = "failed"
)

// Payment statuses
const (
	PaymentStatusPending           = "pending"
	PaymentStatusProcessing        = "processing"
	PaymentStatusPaid              = "paid"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

var validOrderStatuses = map[string]bool{
	OrderStatusCreated:   true,
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusCompleted: true,
	OrderStatusCancelled: true,
	OrderStatusFailed:    true,
}

var validPaymentStatuses = map[string]bool{
	PaymentStatusPending:           true,
	PaymentStatusProcessing:        true,
	PaymentStatusPaid:              true,
	PaymentStatusFailed:            true,
	PaymentStatusRefunded:          true,
	PaymentStatusPartiallyRefunded: true,
}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	return validOrderStatuses[s]
}

// IsValidPaymentStatus reports whether s is a known payment status
func IsValidPaymentStatus(s string) bool {
	return validPaymentStatuses[s]
}

// Order identifies a single purchase attempt for a course
type Order struct {
	ID                int        `json:"id"`
	UserID            int        `json:"userId"`
	UserName          string     `json:"userName"`
	UserEmail         string     `json:"userEmail"`
	CourseID          int        `json:"courseId"`
	CourseTitle       string     `json:"courseTitle"`
	CourseImage       string     `json:"courseImage"`
	CoursePricing     float64    `json:"coursePricing"`
	InstructorID      int        `json:"instructorId"`
	InstructorName    string     `json:"instructorName"`
	OrderStatus       string     `json:"orderStatus"`
	PaymentStatus     string     `json:"paymentStatus"`
	PaymentMethod     string     `json:"paymentMethod"`
	Currency          string     `json:"currency"`
	AmountInPaise     int64      `json:"amountInPaise"`
	RazorpayOrderID   string     `json:"razorpayOrderId"`
	RazorpayPaymentID string     `json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string     `json:"razorpaySignature,omitempty"`
	Receipt           string     `json:"receipt"`
	OrderDate         time.Time  `json:"orderDate"`
	PaymentDate       *time.Time `json:"paymentDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// AmountInRupees is the major-unit view of the stored minor-unit amount
func (o *Order) AmountInRupees() float64 {
	return float64(o.AmountInPaise) / 100
}

// IsPaymentSuccessful reports whether the order reached its paid terminal state
func (o *Order) IsPaymentSuccessful() bool {
	return o.PaymentStatus == PaymentStatusPaid && o.OrderStatus == OrderStatusConfirmed
}

// OrderResponse is the API representation of an Order
type OrderResponse struct {
	Order
	AmountInRupees float64 `json:"amountInRupees"`
}

// ToResponse attaches the derived major-unit amount
func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{Order: *o, AmountInRupees: o.AmountInRupees()}
}

// RefundInfo describes refund eligibility for a paid order
type RefundInfo struct {
	Eligible       bool   `json:"eligible"`
	Reason         string `json:"reason,omitempty"`
	DaysRemaining  int    `json:"daysRemaining"`
	Deadline       string `json:"deadline,omitempty"`
	DeadlinePassed bool   `json:"deadlinePassed"`
}
