package saleor

// Entity shapes returned by the Saleor GraphQL API. Only the fields the
// bridge consumes are declared; everything else is ignored on decode.

type Image struct {
	URL string `json:"url"`
}

type MetadataItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Price struct {
	Gross Money `json:"gross"`
}

type VariantPricing struct {
	Price *Price `json:"price"`
}

type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Variant struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	QuantityAvailable *int            `json:"quantityAvailable"`
	Pricing           *VariantPricing `json:"pricing"`
	Weight            *Weight         `json:"weight"`
	Media             []Image         `json:"media"`

	// Product is populated on variant webhooks only.
	Product *Product `json:"product,omitempty"`
}

type Category struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	BackgroundImage *Image `json:"backgroundImage"`
}

type Collection struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	BackgroundImage *Image `json:"backgroundImage"`
}

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Created     string         `json:"created"`
	UpdatedAt   string         `json:"updatedAt"`
	Category    *Category      `json:"category"`
	Thumbnail   *Image         `json:"thumbnail"`
	Metadata    []MetadataItem `json:"metadata"`
	Variants    []Variant      `json:"variants"`
}

// PageInfo is Saleor's cursor pagination marker.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

type ProductConnection struct {
	Nodes      []Product
	PageInfo   PageInfo
	TotalCount int
}

type CollectionConnection struct {
	Nodes      []Collection
	PageInfo   PageInfo
	TotalCount int
}

type CategoryConnection struct {
	Nodes      []Category
	PageInfo   PageInfo
	TotalCount int
}

// VariantDetails is the resolution result used while building order lines.
type VariantDetails struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	SKU               string `json:"sku"`
	QuantityAvailable *int   `json:"quantityAvailable"`
}

type ShippingMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddressInput mirrors Saleor's AddressInput for draft order creation.
type AddressInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	StreetAddress1 string `json:"streetAddress1"`
	StreetAddress2 string `json:"streetAddress2,omitempty"`
	City           string `json:"city"`
	CountryArea    string `json:"countryArea,omitempty"`
	PostalCode     string `json:"postalCode"`
	Country        string `json:"country"`
}

type OrderLineInput struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type DraftOrderInput struct {
	ChannelID       string           `json:"channelId"`
	UserEmail       string           `json:"userEmail,omitempty"`
	ShippingAddress *AddressInput    `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressInput    `json:"billingAddress,omitempty"`
	Lines           []OrderLineInput `json:"lines"`
}

// apiError is the error shape embedded in Saleor mutation payloads.
type apiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
