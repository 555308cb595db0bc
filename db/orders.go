package db

import (
	"context"
	"coursehub/models"
	"database/sql"
	"fmt"
	"time"
)

// OrderStore persists purchase attempts
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(database *sql.DB) *OrderStore {
	return &OrderStore{db: database}
}

const orderColumns = `id, user_id, user_name, user_email, course_id, course_title, course_image,
	course_pricing, instructor_id, instructor_name, order_status, payment_status, payment_method,
	currency, amount_in_paise, razorpay_order_id, razorpay_payment_id, razorpay_signature,
	receipt, order_date, payment_date, created_at, updated_at`

func scanOrder(scanner interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	var paymentDate sql.NullTime
	err := scanner.Scan(&o.ID, &o.UserID, &o.UserName, &o.UserEmail, &o.CourseID, &o.CourseTitle,
		&o.CourseImage, &o.CoursePricing, &o.InstructorID, &o.InstructorName, &o.OrderStatus,
		&o.PaymentStatus, &o.PaymentMethod, &o.Currency, &o.AmountInPaise, &o.RazorpayOrderID,
		&o.RazorpayPaymentID, &o.RazorpaySignature, &o.Receipt, &o.OrderDate, &paymentDate,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paymentDate.Valid {
		o.PaymentDate = &paymentDate.Time
	}
	return &o, nil
}

// Create inserts a new order row and returns its id
func (s *OrderStore) Create(ctx context.Context, o *models.Order) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, user_name, user_email, course_id, course_title, course_image,
			course_pricing, instructor_id, instructor_name, order_status, payment_status,
			payment_method, currency, amount_in_paise, razorpay_order_id, receipt, order_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id`,
		o.UserID, o.UserName, o.UserEmail, o.CourseID, o.CourseTitle, o.CourseImage,
		o.CoursePricing, o.InstructorID, o.InstructorName, o.OrderStatus, o.PaymentStatus,
		o.PaymentMethod, o.Currency, o.AmountInPaise, o.RazorpayOrderID, o.Receipt,
		o.OrderDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting order: %w", err)
	}
	return id, nil
}

// GetByID returns the order with the given id, or sql.ErrNoRows
func (s *OrderStore) GetByID(ctx context.Context, id int) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	return scanOrder(row)
}

// GetByRazorpayOrderID returns the order referencing a gateway order id
func (s *OrderStore) GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE razorpay_order_id = $1", razorpayOrderID)
	return scanOrder(row)
}

// MarkPaid records the terminal paid state. The WHERE clause only matches
// orders that are not yet paid, so a concurrent duplicate finalize is a no-op.
func (s *OrderStore) MarkPaid(ctx context.Context, id int, paymentID, signature string, paidAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1, order_status = $2, razorpay_payment_id = $3,
			razorpay_signature = $4, payment_date = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6 AND payment_status <> $1`,
		models.PaymentStatusPaid, models.OrderStatusConfirmed, paymentID, signature, paidAt, id)
	if err != nil {
		return fmt.Errorf("error marking order paid: %w", err)
	}
	return nil
}

// MarkFailed records a failed payment reported by the gateway
func (s *OrderStore) MarkFailed(ctx context.Context, id int, paymentID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1, order_status = $2, razorpay_payment_id = $3,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4 AND payment_status <> $5`,
		models.PaymentStatusFailed, models.OrderStatusFailed, paymentID, id, models.PaymentStatusPaid)
	if err != nil {
		return fmt.Errorf("error marking order failed: %w", err)
	}
	return nil
}

// ListCreatedBetween returns orders created inside [start, end]
func (s *OrderStore) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC",
		start, end)
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
