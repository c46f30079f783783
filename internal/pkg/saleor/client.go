package saleor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storelink/shiprocket-bridge/internal/pkg/env"
)

// Client is a typed wrapper over Saleor's GraphQL endpoint. All catalog and
// order operations the bridge performs go through it.
type Client struct {
	APIURL string
	Token  string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIURL: strings.TrimSpace(env.GetEnv("SALEOR_API_URL", "")),
		Token:  strings.TrimSpace(env.GetEnv("SALEOR_APP_TOKEN", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute posts one GraphQL document and decodes the data payload into out.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("SALEOR_API_URL is not configured")
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("saleor request failed: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("saleor response decode failed: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("saleor graphql error: %s", strings.Join(msgs, ", "))
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("saleor data decode failed: %w", err)
		}
	}
	return nil
}

const productFields = `
  id
  name
  description
  created
  updatedAt
  category { name }
  thumbnail { url }
  metadata { key value }
  variants {
    id
    name
    sku
    quantityAvailable
    pricing(address: null) { price { gross { amount currency } } }
    weight { value unit }
    media { url }
  }
`

const productsQuery = `
query Products($first: Int!, $after: String, $channel: String!) {
  products(first: $first, after: $after, channel: $channel) {
    edges { node {` + productFields + `} }
    pageInfo { endCursor hasNextPage }
    totalCount
  }
}`

const collectionsQuery = `
query Collections($first: Int!, $after: String, $channel: String!) {
  collections(first: $first, after: $after, channel: $channel) {
    edges { node { id name description backgroundImage { url } } }
    pageInfo { endCursor hasNextPage }
    totalCount
  }
}`

const categoriesQuery = `
query Categories($first: Int!, $after: String) {
  categories(first: $first, after: $after) {
    edges { node { id name description backgroundImage { url } } }
    pageInfo { endCursor hasNextPage }
    totalCount
  }
}`

const collectionProductsQuery = `
query CollectionProducts($id: ID!, $first: Int!, $after: String, $channel: String!) {
  collection(id: $id, channel: $channel) {
    products(first: $first, after: $after) {
      edges { node {` + productFields + `} }
      pageInfo { endCursor hasNextPage }
      totalCount
    }
  }
}`

const categoryProductsQuery = `
query CategoryProducts($id: ID!, $first: Int!, $after: String, $channel: String!) {
  category(id: $id) {
    products(first: $first, after: $after, channel: $channel) {
      edges { node {` + productFields + `} }
      pageInfo { endCursor hasNextPage }
      totalCount
    }
  }
}`

const variantDetailsQuery = `
query VariantDetails($id: ID!, $channel: String!) {
  productVariant(id: $id, channel: $channel) {
    id
    name
    sku
    quantityAvailable
  }
}`

const shippingMethodsQuery = `
query ShippingMethods($channel: String!) {
  shippingZones(first: 1, channel: $channel) {
    edges { node { shippingMethods { id name } } }
  }
}`

const draftOrderCreateMutation = `
mutation DraftOrderCreate($input: DraftOrderCreateInput!) {
  draftOrderCreate(input: $input) {
    order { id }
    errors { field message code }
  }
}`

const draftOrderCompleteMutation = `
mutation DraftOrderComplete($id: ID!) {
  draftOrderComplete(id: $id) {
    order { id number }
    errors { field message code }
  }
}`

const draftOrderShippingUpdateMutation = `
mutation DraftOrderShippingUpdate($id: ID!, $input: DraftOrderInput!) {
  draftOrderUpdate(id: $id, input: $input) {
    order { id }
    errors { field message code }
  }
}`

const orderMarkAsPaidMutation = `
mutation OrderMarkAsPaid($id: ID!, $transactionReference: String) {
  orderMarkAsPaid(id: $id, transactionReference: $transactionReference) {
    order { id isPaid }
    errors { field message code }
  }
}`

const orderNoteAddMutation = `
mutation OrderNoteAdd($orderId: ID!, $message: String!) {
  orderAddNote(order: $orderId, input: { message: $message }) {
    order { id }
    errors { field message }
  }
}`

type connectionEnvelope struct {
	Edges []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
	PageInfo   PageInfo `json:"pageInfo"`
	TotalCount int      `json:"totalCount"`
}

func decodeProducts(conn *connectionEnvelope) (ProductConnection, error) {
	out := ProductConnection{PageInfo: conn.PageInfo, TotalCount: conn.TotalCount}
	for _, edge := range conn.Edges {
		var p Product
		if err := json.Unmarshal(edge.Node, &p); err != nil {
			return ProductConnection{}, err
		}
		out.Nodes = append(out.Nodes, p)
	}
	return out, nil
}

// Products fetches one cursor page of the product catalog for a channel.
func (c *Client) Products(ctx context.Context, channel, after string, first int) (ProductConnection, error) {
	vars := map[string]any{"first": first, "channel": channel}
	if after != "" {
		vars["after"] = after
	}
	var out struct {
		Products *connectionEnvelope `json:"products"`
	}
	if err := c.execute(ctx, productsQuery, vars, &out); err != nil {
		return ProductConnection{}, err
	}
	if out.Products == nil {
		return ProductConnection{}, nil
	}
	return decodeProducts(out.Products)
}

// Collections fetches one cursor page of collections for a channel.
func (c *Client) Collections(ctx context.Context, channel, after string, first int) (CollectionConnection, error) {
	vars := map[string]any{"first": first, "channel": channel}
	if after != "" {
		vars["after"] = after
	}
	var out struct {
		Collections *struct {
			Edges []struct {
				Node Collection `json:"node"`
			} `json:"edges"`
			PageInfo   PageInfo `json:"pageInfo"`
			TotalCount int      `json:"totalCount"`
		} `json:"collections"`
	}
	if err := c.execute(ctx, collectionsQuery, vars, &out); err != nil {
		return CollectionConnection{}, err
	}
	if out.Collections == nil {
		return CollectionConnection{}, nil
	}
	conn := CollectionConnection{PageInfo: out.Collections.PageInfo, TotalCount: out.Collections.TotalCount}
	for _, edge := range out.Collections.Edges {
		conn.Nodes = append(conn.Nodes, edge.Node)
	}
	return conn, nil
}

// Categories fetches one cursor page of categories. Categories are not
// channel-scoped in Saleor.
func (c *Client) Categories(ctx context.Context, after string, first int) (CategoryConnection, error) {
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	var out struct {
		Categories *struct {
			Edges []struct {
				Node Category `json:"node"`
			} `json:"edges"`
			PageInfo   PageInfo `json:"pageInfo"`
			TotalCount int      `json:"totalCount"`
		} `json:"categories"`
	}
	if err := c.execute(ctx, categoriesQuery, vars, &out); err != nil {
		return CategoryConnection{}, err
	}
	if out.Categories == nil {
		return CategoryConnection{}, nil
	}
	conn := CategoryConnection{PageInfo: out.Categories.PageInfo, TotalCount: out.Categories.TotalCount}
	for _, edge := range out.Categories.Edges {
		conn.Nodes = append(conn.Nodes, edge.Node)
	}
	return conn, nil
}

// CollectionProducts fetches one cursor page of products in a collection.
func (c *Client) CollectionProducts(ctx context.Context, collectionID, channel, after string, first int) (ProductConnection, error) {
	vars := map[string]any{"id": collectionID, "first": first, "channel": channel}
	if after != "" {
		vars["after"] = after
	}
	var out struct {
		Collection *struct {
			Products *connectionEnvelope `json:"products"`
		} `json:"collection"`
	}
	if err := c.execute(ctx, collectionProductsQuery, vars, &out); err != nil {
		return ProductConnection{}, err
	}
	if out.Collection == nil || out.Collection.Products == nil {
		return ProductConnection{}, nil
	}
	return decodeProducts(out.Collection.Products)
}

// CategoryProducts fetches one cursor page of products in a category.
func (c *Client) CategoryProducts(ctx context.Context, categoryID, channel, after string, first int) (ProductConnection, error) {
	vars := map[string]any{"id": categoryID, "first": first, "channel": channel}
	if after != "" {
		vars["after"] = after
	}
	var out struct {
		Category *struct {
			Products *connectionEnvelope `json:"products"`
		} `json:"category"`
	}
	if err := c.execute(ctx, categoryProductsQuery, vars, &out); err != nil {
		return ProductConnection{}, err
	}
	if out.Category == nil || out.Category.Products == nil {
		return ProductConnection{}, nil
	}
	return decodeProducts(out.Category.Products)
}

// VariantDetails resolves a variant id within a channel; a nil result means
// the variant does not exist or is not published on the channel.
func (c *Client) VariantDetails(ctx context.Context, id, channel string) (*VariantDetails, error) {
	var out struct {
		ProductVariant *VariantDetails `json:"productVariant"`
	}
	vars := map[string]any{"id": id, "channel": channel}
	if err := c.execute(ctx, variantDetailsQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.ProductVariant, nil
}

// ShippingMethods returns the shipping methods of the first shipping zone
// configured for the channel.
func (c *Client) ShippingMethods(ctx context.Context, channel string) ([]ShippingMethod, error) {
	var out struct {
		ShippingZones *struct {
			Edges []struct {
				Node struct {
					ShippingMethods []ShippingMethod `json:"shippingMethods"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"shippingZones"`
	}
	vars := map[string]any{"channel": channel}
	if err := c.execute(ctx, shippingMethodsQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.ShippingZones == nil || len(out.ShippingZones.Edges) == 0 {
		return nil, nil
	}
	return out.ShippingZones.Edges[0].Node.ShippingMethods, nil
}

func joinAPIErrors(errs []apiError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, ", ")
}

// DraftOrderCreate creates an uncommitted order and returns its id.
func (c *Client) DraftOrderCreate(ctx context.Context, input DraftOrderInput) (string, error) {
	var out struct {
		DraftOrderCreate *struct {
			Order *struct {
				ID string `json:"id"`
			} `json:"order"`
			Errors []apiError `json:"errors"`
		} `json:"draftOrderCreate"`
	}
	if err := c.execute(ctx, draftOrderCreateMutation, map[string]any{"input": input}, &out); err != nil {
		return "", err
	}
	if out.DraftOrderCreate == nil {
		return "", errors.New("empty draftOrderCreate payload")
	}
	if len(out.DraftOrderCreate.Errors) > 0 {
		return "", fmt.Errorf("draft order creation failed: %s", joinAPIErrors(out.DraftOrderCreate.Errors))
	}
	if out.DraftOrderCreate.Order == nil || out.DraftOrderCreate.Order.ID == "" {
		return "", errors.New("no order ID returned")
	}
	return out.DraftOrderCreate.Order.ID, nil
}

// DraftOrderComplete finalizes a draft order and returns the order number.
func (c *Client) DraftOrderComplete(ctx context.Context, id string) (string, error) {
	var out struct {
		DraftOrderComplete *struct {
			Order *struct {
				ID     string `json:"id"`
				Number string `json:"number"`
			} `json:"order"`
			Errors []apiError `json:"errors"`
		} `json:"draftOrderComplete"`
	}
	if err := c.execute(ctx, draftOrderCompleteMutation, map[string]any{"id": id}, &out); err != nil {
		return "", err
	}
	if out.DraftOrderComplete == nil {
		return "", errors.New("empty draftOrderComplete payload")
	}
	if len(out.DraftOrderComplete.Errors) > 0 {
		return "", fmt.Errorf("draft order completion failed: %s", joinAPIErrors(out.DraftOrderComplete.Errors))
	}
	if out.DraftOrderComplete.Order == nil {
		return "", errors.New("no order returned")
	}
	return out.DraftOrderComplete.Order.Number, nil
}

// DraftOrderShippingMethodUpdate attaches a shipping method to a draft order.
func (c *Client) DraftOrderShippingMethodUpdate(ctx context.Context, id, shippingMethodID string) error {
	var out struct {
		DraftOrderUpdate *struct {
			Errors []apiError `json:"errors"`
		} `json:"draftOrderUpdate"`
	}
	vars := map[string]any{
		"id":    id,
		"input": map[string]any{"shippingMethod": shippingMethodID},
	}
	if err := c.execute(ctx, draftOrderShippingUpdateMutation, vars, &out); err != nil {
		return err
	}
	if out.DraftOrderUpdate != nil && len(out.DraftOrderUpdate.Errors) > 0 {
		return fmt.Errorf("shipping method update failed: %s", joinAPIErrors(out.DraftOrderUpdate.Errors))
	}
	return nil
}

// OrderMarkAsPaid flags an order paid with an external transaction reference.
func (c *Client) OrderMarkAsPaid(ctx context.Context, id, transactionReference string) error {
	var out struct {
		OrderMarkAsPaid *struct {
			Errors []apiError `json:"errors"`
		} `json:"orderMarkAsPaid"`
	}
	vars := map[string]any{"id": id, "transactionReference": transactionReference}
	if err := c.execute(ctx, orderMarkAsPaidMutation, vars, &out); err != nil {
		return err
	}
	if out.OrderMarkAsPaid != nil && len(out.OrderMarkAsPaid.Errors) > 0 {
		return fmt.Errorf("mark as paid failed: %s", joinAPIErrors(out.OrderMarkAsPaid.Errors))
	}
	return nil
}

// OrderNoteAdd attaches a free-form note to an order.
func (c *Client) OrderNoteAdd(ctx context.Context, orderID, message string) error {
	var out struct {
		OrderAddNote *struct {
			Errors []apiError `json:"errors"`
		} `json:"orderAddNote"`
	}
	vars := map[string]any{"orderId": orderID, "message": message}
	if err := c.execute(ctx, orderNoteAddMutation, vars, &out); err != nil {
		return err
	}
	if out.OrderAddNote != nil && len(out.OrderAddNote.Errors) > 0 {
		return fmt.Errorf("order note failed: %s", joinAPIErrors(out.OrderAddNote.Errors))
	}
	return nil
}
