package shiprocket

// Order webhook status values.
const (
	OrderStatusSuccess = "SUCCESS"
	OrderStatusFailed  = "FAILED"
	OrderStatusPending = "PENDING"
)

// Payment types on the order webhook.
const (
	PaymentCashOnDelivery = "CASH_ON_DELIVERY"
	PaymentPrepaid        = "PREPAID"
)

type CartItem struct {
	VariantID string  `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	ProductID string  `json:"product_id,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

type CartData struct {
	Items []CartItem `json:"items"`
}

type Address struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
}

type CustomerDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// OrderWebhook is the payload ShipRocket posts after a checkout completes.
// order_id is ShipRocket's own identifier, distinct from the Saleor order id
// created from it.
type OrderWebhook struct {
	OrderID            string   `json:"order_id"`
	CartData           CartData `json:"cart_data"`
	Status             string   `json:"status"`
	Phone              string   `json:"phone"`
	Email              string   `json:"email"`
	PaymentType        string   `json:"payment_type"`
	TotalAmountPayable float64  `json:"total_amount_payable"`

	CustomerDetails *CustomerDetails `json:"customer_details,omitempty"`
	ShippingAddress *Address         `json:"shipping_address,omitempty"`
	BillingAddress  *Address         `json:"billing_address,omitempty"`

	CouponCode      string  `json:"coupon_code,omitempty"`
	DiscountAmount  float64 `json:"discount_amount,omitempty"`
	ShippingCharges float64 `json:"shipping_charges,omitempty"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	TransactionID   string  `json:"transaction_id,omitempty"`
}

// VariantImage wraps an image URL the way ShipRocket's catalog schema expects.
// A missing image is a JSON null, never an empty src.
type VariantImage struct {
	Src string `json:"src"`
}

type CatalogVariant struct {
	ID                string        `json:"id"`
	ProductID         string        `json:"product_id"`
	Title             string        `json:"title"`
	Price             string        `json:"price"`
	SKU               string        `json:"sku"`
	CompareAtPrice    string        `json:"compare_at_price"`
	InventoryQuantity int           `json:"inventory_quantity"`
	Weight            float64       `json:"weight"`
	WeightUnit        string        `json:"weight_unit"`
	Image             *VariantImage `json:"image"`
	UpdatedAt         string        `json:"updated_at"`
}

type CatalogProduct struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	Status      string           `json:"status"`
	Variants    []CatalogVariant `json:"variants"`
	Image       *VariantImage    `json:"image"`
}

type CatalogCollection struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	BodyHTML  string        `json:"body_html"`
	UpdatedAt string        `json:"updated_at"`
	Image     *VariantImage `json:"image"`
}

// Pagination is the page-number envelope ShipRocket's pull API expects. The
// upstream source is cursor based; see the catalog service for the
// translation.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
	PerPage     int `json:"per_page"`
}

type ProductsResponse struct {
	Products   []CatalogProduct `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type CollectionsResponse struct {
	Collections []CatalogCollection `json:"collections"`
	Pagination  Pagination          `json:"pagination"`
}

// CheckoutRequest is the storefront's token request.
type CheckoutRequest struct {
	CartData      *CheckoutCart `json:"cart_data" validate:"required"`
	RedirectURL   string        `json:"redirect_url,omitempty"`
	CustomerEmail string        `json:"customer_email,omitempty"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
}

type CheckoutCart struct {
	Items []CheckoutCartItem `json:"items" validate:"required,min=1,dive"`
}

type CheckoutCartItem struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CheckoutAuthorization is what the storefront gets back. Failures are
// reported in-band, never as a panic or raw transport error.
type CheckoutAuthorization struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// accessTokenResponse is ShipRocket's token issuance payload.
type accessTokenResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Result  struct {
		Token       string `json:"token"`
		OrderID     string `json:"order_id"`
		CheckoutURL string `json:"checkout_url"`
	} `json:"result"`
}

// OrderDetails is ShipRocket's order lookup payload; the result shape is
// provider defined and passed through untyped.
type OrderDetails struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Result  map[string]any `json:"result"`
}
