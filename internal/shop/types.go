package shop

import (
	"strings"
	"time"
)

// Collection names as they exist in the remote store.
const (
	CollectionCustomers          = "customers"
	CollectionOrders             = "orders"
	CollectionProducts           = "products"
	CollectionInventoryHistory   = "inventory_history"
	CollectionOrderStatusHistory = "order_status_history"
	CollectionSalesData          = "sales_data"
	CollectionCategoryData       = "category_data"
)

// CriticalCollections are probed by the refresh sweep when the config does
// not override them.
var CriticalCollections = []string{
	CollectionProducts,
	CollectionOrders,
	CollectionCustomers,
	CollectionInventoryHistory,
}

// Order statuses.
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Product statuses.
const (
	ProductActive   = "active"
	ProductDraft    = "draft"
	ProductArchived = "archived"
)

// Customer mirrors a row of the customers collection.
type Customer struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	City        string  `json:"city,omitempty"`
	OrdersCount int     `json:"orders_count"`
	TotalSpent  float64 `json:"total_spent"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// Order mirrors a row of the orders collection. Source is free text entered
// by whoever created the order ("Wildberries", "wb", "Ozon", "site", ...).
type Order struct {
	ID           string  `json:"id,omitempty"`
	CustomerID   string  `json:"customer_id,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
	Source       string  `json:"source"`
	Status       string  `json:"status"`
	Total        float64 `json:"total"`
	ItemsCount   int     `json:"items_count"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// Product mirrors a row of the products collection.
type Product struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	DiscountPrice   float64  `json:"discount_price,omitempty"`
	Category        string   `json:"category,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	InStock         bool     `json:"in_stock"`
	Colors          []string `json:"colors,omitempty"`
	Sizes           []string `json:"sizes,omitempty"`
	CountryOfOrigin string   `json:"country_of_origin,omitempty"`
	IsNew           bool     `json:"is_new"`
	IsBestseller    bool     `json:"is_bestseller"`
	ArticleNumber   string   `json:"article_number,omitempty"`
	Barcode         string   `json:"barcode,omitempty"`
	WildberriesURL  string   `json:"wildberries_url,omitempty"`
	OzonURL         string   `json:"ozon_url,omitempty"`
	AvitoURL        string   `json:"avito_url,omitempty"`
	StockQuantity   int      `json:"stock_quantity"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// InventoryHistory records one stock movement for a product.
type InventoryHistory struct {
	ID            string `json:"id,omitempty"`
	ProductID     string `json:"product_id"`
	ProductTitle  string `json:"product_title,omitempty"`
	Change        int    `json:"change"`
	QuantityAfter int    `json:"quantity_after"`
	Reason        string `json:"reason,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// OrderStatusHistory records one status transition of an order.
type OrderStatusHistory struct {
	ID        string `json:"id,omitempty"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Comment   string `json:"comment,omitempty"`
	ChangedAt string `json:"changed_at,omitempty"`
}

// SalesData is one period of the sales aggregate.
type SalesData struct {
	ID      string  `json:"id,omitempty"`
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// CategoryData is one category of the category aggregate.
type CategoryData struct {
	ID       string  `json:"id,omitempty"`
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Products int     `json:"products"`
}

var statusFlow = []string{StatusNew, StatusProcessing, StatusShipped, StatusDelivered}

// NextStatus returns the status following current in the fulfilment flow.
// Terminal statuses (delivered, cancelled) and unknown values return false.
func NextStatus(current string) (string, bool) {
	current = strings.ToLower(strings.TrimSpace(current))
	for i, status := range statusFlow {
		if status == current && i+1 < len(statusFlow) {
			return statusFlow[i+1], true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func IsTerminal(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// TimestampLayout is fixed width so timestamps written by Stockroom sort
// chronologically as text.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp formats t the way the store writes timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTime accepts the timestamp shapes seen in the store.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
