package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses, in pipeline order.
const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// AllStatuses lists every order status in canonical pipeline order,
// cancelled last. Status sorting uses this order, not alphabetical.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// PaymentStatus is the payment state of an order. It is tracked for
// display but never gates the status workflow.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is a structured delivery address.
type Address struct {
	Street     string `json:"street" db:"delivery_street"`
	City       string `json:"city" db:"delivery_city"`
	State      string `json:"state" db:"delivery_state"`
	Country    string `json:"country" db:"delivery_country"`
	PostalCode string `json:"postalCode" db:"delivery_postal_code"`
	Landmark   string `json:"landmark,omitempty" db:"delivery_landmark"`
}

// Order represents one customer purchase with its line items.
type Order struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	OrderNumber           string        `json:"orderNumber" db:"order_number"`
	CustomerName          string        `json:"customerName" db:"customer_name"`
	CustomerEmail         string        `json:"customerEmail" db:"customer_email"`
	CustomerPhone         string        `json:"customerPhone" db:"customer_phone"`
	Company               *string       `json:"company,omitempty" db:"company"`
	Address               Address       `json:"deliveryAddress"`
	Subtotal              float64       `json:"subtotal" db:"subtotal"`
	TaxAmount             float64       `json:"taxAmount" db:"tax_amount"`
	DeliveryFee           float64       `json:"deliveryFee" db:"delivery_fee"`
	TotalAmount           float64       `json:"totalAmount" db:"total_amount"`
	OrderStatus           OrderStatus   `json:"orderStatus" db:"order_status"`
	PaymentStatus         PaymentStatus `json:"paymentStatus" db:"payment_status"`
	OrderNotes            *string       `json:"orderNotes,omitempty" db:"order_notes"`
	CreatedAt             time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time     `json:"updatedAt" db:"updated_at"`
	EstimatedDeliveryTime *time.Time    `json:"estimatedDeliveryTime,omitempty" db:"estimated_delivery_time"`
	Items                 []OrderItem   `json:"items"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID             uuid.UUID      `json:"-" db:"id"`
	OrderID        uuid.UUID      `json:"-" db:"order_id"`
	ItemType       string         `json:"itemType" db:"item_type"`
	ItemID         string         `json:"itemId" db:"item_id"`
	ItemName       string         `json:"itemName" db:"item_name"`
	Description    *string        `json:"description,omitempty" db:"description"`
	Quantity       int            `json:"quantity" db:"quantity"`
	UnitPrice      float64        `json:"unitPrice" db:"unit_price"`
	TotalPrice     float64        `json:"totalPrice" db:"total_price"`
	Customizations map[string]any `json:"customizations,omitempty" db:"customizations"`
}

// StatusHistory is an append-only audit record of a status transition.
// Written once per transition; never read back by this service.
type StatusHistory struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	OrderID   uuid.UUID   `json:"orderId" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Note      *string     `json:"note,omitempty" db:"note"`
	CreatedBy string      `json:"createdBy" db:"created_by"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// OrderView is an order annotated for display: elapsed-time label and
// urgency color, plus the session-local urgent flag.
type OrderView struct {
	Order
	ElapsedMinutes int    `json:"elapsedMinutes"`
	ElapsedLabel   string `json:"elapsedLabel"`
	ElapsedClass   string `json:"elapsedClass"`
	Urgent         bool   `json:"urgent"`
	Updating       bool   `json:"updating"`
}

// Stats is the aggregate dashboard summary derived from a snapshot.
type Stats struct {
	CountByStatus map[OrderStatus]int `json:"countByStatus"`
	InProgress    int                 `json:"inProgress"`
	RevenueToday  float64             `json:"revenueToday"`
	Total         int                 `json:"total"`
}

// Notification is a transient user-facing notice produced by the
// session controller. It lives only in session memory and is lost on
// restart.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Level     string    `json:"level"` // "info", "success" or "error"
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
