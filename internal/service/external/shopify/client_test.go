package shopify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
)

const shop = "demo.myshopify.com"

type recorded struct {
	token string
	req   graphQLRequest
}

func newTestClient(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls = append(calls, recorded{token: r.Header.Get("X-Shopify-Access-Token"), req: req})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(Config{
		AccessToken:       "shpat_test",
		RequestsPerSecond: 1000,
		Endpoint:          func(string) string { return srv.URL },
	}, logger)
	return c, &calls
}

func TestProducts_MapsNodesAndFallbacks(t *testing.T) {
	c, calls := newTestClient(t, http.StatusOK, `{"data":{"products":{
		"nodes":[
			{"id":"gid://shopify/Product/1","title":"Shirt","handle":"shirt","status":"ACTIVE","updatedAt":"2024-05-01T10:00:00Z","descriptionHtml":"<p>Soft</p>","featuredImage":{"url":"https://cdn.test/shirt.png"},"seo":{"description":"Linen shirt"}},
			{"id":"gid://shopify/Product/2","title":"Hat","handle":"hat","status":"DRAFT","updatedAt":"","descriptionHtml":"","featuredImage":null,"seo":null}
		],
		"pageInfo":{"hasNextPage":true,"hasPreviousPage":false,"startCursor":"s1","endCursor":"e1"}}}}`)

	page, err := c.Products(context.Background(), shop, store.PageRequest{Query: "status:ACTIVE shirt", First: 50, After: "e0"})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "https://cdn.test/shirt.png", page.Items[0].ImageURL)
	assert.Equal(t, "Linen shirt", page.Items[0].SEODescription)
	assert.Equal(t, store.PlaceholderImage, page.Items[1].ImageURL)
	assert.Equal(t, store.MissingTimestamp, page.Items[1].UpdatedAt)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.Equal(t, "e1", page.PageInfo.EndCursor)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "shpat_test", call.token)
	assert.Equal(t, "status:ACTIVE shirt", call.req.Variables["query"])
	assert.EqualValues(t, 50, call.req.Variables["first"])
	assert.Equal(t, "e0", call.req.Variables["after"])
	assert.NotContains(t, call.req.Variables, "before")
}

func TestPageVars_BackwardPaging(t *testing.T) {
	vars := pageVars(store.PageRequest{First: 50, Before: "s1"})
	assert.Equal(t, map[string]any{"last": 50, "before": "s1"}, vars)

	vars = pageVars(store.PageRequest{First: 50})
	assert.Equal(t, map[string]any{"first": 50}, vars)
}

func TestProduct_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"data":{"product":null}}`)

	_, err := c.Product(context.Background(), shop, "gid://shopify/Product/9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_GraphQLErrorIsUpstream(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`)

	_, err := c.Collections(context.Background(), shop, store.PageRequest{First: 10})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.EqualError(t, err, "Error listing collections")

	l := c.limiterFor(shop)
	assert.True(t, l.retryAt.After(time.Now()), "throttling backs off the shop")
}

func TestQuery_HTTPStatusIsUpstream(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnauthorized, `{"errors":"[API] Invalid API key"}`)

	_, err := c.Products(context.Background(), shop, store.PageRequest{First: 10})
	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "listing products", upstream.Operation)
}

func TestCreateCharge(t *testing.T) {
	c, calls := newTestClient(t, http.StatusOK, `{"data":{"appPurchaseOneTimeCreate":{
		"appPurchaseOneTime":{"id":"gid://shopify/AppPurchaseOneTime/7","status":"PENDING"},
		"confirmationUrl":"https://demo.myshopify.com/admin/charges/7/confirm",
		"userErrors":[]}}}`)

	charge, err := c.CreateCharge(context.Background(), shop, services.ChargeRequest{
		Name: "2500 credits", Amount: 19.99, Currency: "USD", ReturnURL: "https://app.test/credits", Test: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/AppPurchaseOneTime/7", charge.ID)
	assert.Equal(t, "PENDING", charge.Status)
	assert.Contains(t, charge.ConfirmationURL, "/confirm")

	price := (*calls)[0].req.Variables["price"].(map[string]any)
	assert.Equal(t, "19.99", price["amount"])
	assert.Equal(t, "USD", price["currencyCode"])
}

func TestCreateCharge_UserError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"data":{"appPurchaseOneTimeCreate":{
		"appPurchaseOneTime":null,"confirmationUrl":null,
		"userErrors":[{"field":["price"],"message":"Price must be positive"}]}}}`)

	_, err := c.CreateCharge(context.Background(), shop, services.ChargeRequest{Name: "x", Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestCharge(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"data":{"node":{"id":"gid://shopify/AppPurchaseOneTime/7","status":"ACTIVE"}}}`)

	charge, err := c.Charge(context.Background(), shop, "gid://shopify/AppPurchaseOneTime/7")
	require.NoError(t, err)
	assert.Equal(t, store.ChargeStatusActive, charge.Status)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("soon"))
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, 1500*time.Millisecond, retryAfter("1.5"))
}
