package shopify

import (
	"context"
	"fmt"
	"strconv"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
)

const pageInfoFields = `pageInfo { hasNextPage hasPreviousPage startCursor endCursor }`

const productFields = `id title handle status updatedAt descriptionHtml
seo { description }
featuredImage { url }`

const productsQuery = `query Products($first: Int, $last: Int, $after: String, $before: String, $query: String) {
  products(first: $first, last: $last, after: $after, before: $before, query: $query, sortKey: UPDATED_AT, reverse: true) {
    nodes { ` + productFields + ` }
    ` + pageInfoFields + `
  }
}`

const productQuery = `query Product($id: ID!) {
  product(id: $id) { ` + productFields + ` }
}`

const collectionsQuery = `query Collections($first: Int, $last: Int, $after: String, $before: String, $query: String) {
  collections(first: $first, last: $last, after: $after, before: $before, query: $query, sortKey: UPDATED_AT, reverse: true) {
    nodes { id title handle updatedAt descriptionHtml image { url } }
    ` + pageInfoFields + `
  }
}`

const purchaseMutation = `mutation AppPurchaseOneTimeCreate($name: String!, $price: MoneyInput!, $returnUrl: URL!, $test: Boolean) {
  appPurchaseOneTimeCreate(name: $name, price: $price, returnUrl: $returnUrl, test: $test) {
    appPurchaseOneTime { id status }
    confirmationUrl
    userErrors { field message }
  }
}`

const chargeQuery = `query Charge($id: ID!) {
  node(id: $id) { ... on AppPurchaseOneTime { id status } }
}`

type imageNode struct {
	URL string `json:"url"`
}

type productNode struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Handle          string     `json:"handle"`
	Status          string     `json:"status"`
	UpdatedAt       string     `json:"updatedAt"`
	DescriptionHTML string     `json:"descriptionHtml"`
	FeaturedImage   *imageNode `json:"featuredImage"`
	SEO             *struct {
		Description string `json:"description"`
	} `json:"seo"`
}

func (n productNode) toProduct() store.Product {
	p := store.Product{
		ID:              n.ID,
		Title:           n.Title,
		Handle:          n.Handle,
		Status:          n.Status,
		ImageURL:        imageURL(n.FeaturedImage),
		DescriptionHTML: n.DescriptionHTML,
		UpdatedAt:       timestamp(n.UpdatedAt),
	}
	if n.SEO != nil {
		p.SEODescription = n.SEO.Description
	}
	return p
}

type collectionNode struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Handle          string     `json:"handle"`
	UpdatedAt       string     `json:"updatedAt"`
	DescriptionHTML string     `json:"descriptionHtml"`
	Image           *imageNode `json:"image"`
}

type connection[T any] struct {
	Nodes    []T            `json:"nodes"`
	PageInfo store.PageInfo `json:"pageInfo"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func imageURL(img *imageNode) string {
	if img == nil || img.URL == "" {
		return store.PlaceholderImage
	}
	return img.URL
}

func timestamp(ts string) string {
	if ts == "" {
		return store.MissingTimestamp
	}
	return ts
}

// pageVars maps a page request onto connection arguments. A Before cursor
// pages backwards.
func pageVars(req store.PageRequest) map[string]any {
	vars := map[string]any{}
	if req.Query != "" {
		vars["query"] = req.Query
	}
	if req.Before != "" {
		vars["last"] = req.First
		vars["before"] = req.Before
	} else {
		vars["first"] = req.First
		if req.After != "" {
			vars["after"] = req.After
		}
	}
	return vars
}

// Products lists one page of products
func (c *Client) Products(ctx context.Context, shop string, req store.PageRequest) (*store.Page[store.Product], error) {
	var data struct {
		Products connection[productNode] `json:"products"`
	}
	if err := c.query(ctx, "listing products", shop, productsQuery, pageVars(req), &data); err != nil {
		return nil, err
	}

	items := make([]store.Product, len(data.Products.Nodes))
	for i, n := range data.Products.Nodes {
		items[i] = n.toProduct()
	}
	return &store.Page[store.Product]{Items: items, PageInfo: data.Products.PageInfo}, nil
}

// Collections lists one page of collections
func (c *Client) Collections(ctx context.Context, shop string, req store.PageRequest) (*store.Page[store.Collection], error) {
	var data struct {
		Collections connection[collectionNode] `json:"collections"`
	}
	if err := c.query(ctx, "listing collections", shop, collectionsQuery, pageVars(req), &data); err != nil {
		return nil, err
	}

	items := make([]store.Collection, len(data.Collections.Nodes))
	for i, n := range data.Collections.Nodes {
		items[i] = store.Collection{
			ID:              n.ID,
			Title:           n.Title,
			Handle:          n.Handle,
			ImageURL:        imageURL(n.Image),
			DescriptionHTML: n.DescriptionHTML,
			UpdatedAt:       timestamp(n.UpdatedAt),
		}
	}
	return &store.Page[store.Collection]{Items: items, PageInfo: data.Collections.PageInfo}, nil
}

// Product fetches one product
func (c *Client) Product(ctx context.Context, shop, productID string) (*store.Product, error) {
	var data struct {
		Product *productNode `json:"product"`
	}
	if err := c.query(ctx, "loading product", shop, productQuery, map[string]any{"id": productID}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("product not found: %s", productID)}
	}
	p := data.Product.toProduct()
	return &p, nil
}

// CreateCharge starts a one-time app purchase
func (c *Client) CreateCharge(ctx context.Context, shop string, req services.ChargeRequest) (*store.Charge, error) {
	vars := map[string]any{
		"name": req.Name,
		"price": map[string]any{
			"amount":       strconv.FormatFloat(req.Amount, 'f', 2, 64),
			"currencyCode": req.Currency,
		},
		"returnUrl": req.ReturnURL,
		"test":      req.Test,
	}

	var data struct {
		Create struct {
			Purchase *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"appPurchaseOneTime"`
			ConfirmationURL string      `json:"confirmationUrl"`
			UserErrors      []userError `json:"userErrors"`
		} `json:"appPurchaseOneTimeCreate"`
	}
	if err := c.query(ctx, "creating charge", shop, purchaseMutation, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Create.UserErrors) > 0 {
		return nil, domain.Upstream("creating charge", fmt.Errorf("user error: %s", data.Create.UserErrors[0].Message))
	}
	if data.Create.Purchase == nil {
		return nil, domain.Upstream("creating charge", fmt.Errorf("no purchase returned"))
	}

	return &store.Charge{
		ID:              data.Create.Purchase.ID,
		Status:          data.Create.Purchase.Status,
		ConfirmationURL: data.Create.ConfirmationURL,
	}, nil
}

// Charge fetches the current state of a one-time purchase
func (c *Client) Charge(ctx context.Context, shop, chargeID string) (*store.Charge, error) {
	var data struct {
		Node *struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"node"`
	}
	if err := c.query(ctx, "loading charge", shop, chargeQuery, map[string]any{"id": chargeID}, &data); err != nil {
		return nil, err
	}
	if data.Node == nil || data.Node.ID == "" {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("charge not found: %s", chargeID)}
	}
	return &store.Charge{ID: data.Node.ID, Status: data.Node.Status}, nil
}
