package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/costline/internal/db"
	"github.com/Simplici0/costline/internal/metrics"
	"github.com/Simplici0/costline/internal/migrations"
	"github.com/Simplici0/costline/internal/store"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestHandler(t *testing.T, loginRate string) (http.Handler, *server) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.Up(database))

	st := store.New(database)
	srv := &server{
		auth:    newAuthService(st, "test-secret", time.Hour),
		store:   st,
		metrics: metrics.New(),
	}
	handler, err := newRouter(srv, loginRate)
	require.NoError(t, err)
	return handler, srv
}

func newClient(t *testing.T) *testClient {
	t.Helper()
	handler, _ := newTestHandler(t, "100-M")
	c := &testClient{t: t, handler: handler}
	c.register("chef@example.com")
	return c
}

// as registers another user against the same server.
func (c *testClient) as(email string) *testClient {
	c.t.Helper()
	other := &testClient{t: c.t, handler: c.handler}
	other.register(email)
	return other
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *testClient) register(email string) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": "correct horse"})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	c.token = out.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type created struct {
	ID string `json:"id"`
}

func (c *testClient) create(path string, body any) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, path, body)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[created](c.t, rec).ID
}

// burgerCatalog creates patty, mayo and a two-portion sauce recipe.
func (c *testClient) burgerCatalog() (pattyID, sauceID string) {
	pattyID = c.create("/api/inventory", map[string]any{
		"name": "Beef patty", "category": "meat", "size": "2", "unit": "pc", "price_per_unit": "10",
	})
	mayoID := c.create("/api/inventory", map[string]any{
		"name": "Mayonnaise", "category": "dry", "size": 1, "unit": "kg", "price_per_unit": 12,
	})
	sauceID = c.create("/api/recipes", map[string]any{
		"name":  "House sauce",
		"units": 2,
		"ingredients": []map[string]any{
			{"inventory_id": mayoID, "quantity": "1"},
		},
	})
	return pattyID, sauceID
}

func TestAPIRequiresAuthentication(t *testing.T) {
	handler, _ := newTestHandler(t, "100-M")
	c := &testClient{t: t, handler: handler}

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/dishes", nil).Code)

	c.token = "not-a-token"
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/auth/me", nil).Code)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
}

func TestRegisterLoginAndCookieSession(t *testing.T) {
	c := newClient(t)

	dup := c.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "CHEF@example.com", "password": "another one"})
	assert.Equal(t, http.StatusUnprocessableEntity, dup.Code)

	short := c.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "x", "password": "short"})
	require.Equal(t, http.StatusUnprocessableEntity, short.Code)
	errs := decode[map[string]map[string]string](t, short)["errors"]
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	bad := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "chef@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	login := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "chef@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, login.Code)

	var session *http.Cookie
	for _, cookie := range login.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chef@example.com", decode[identity](t, rec).Email)

	logout := c.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, logout.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	handler, _ := newTestHandler(t, "2-M")
	c := &testClient{t: t, handler: handler}

	body := map[string]string{"email": "nobody@example.com", "password": "whatever1"}
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/auth/login", body).Code)
}

func TestLoginRateLimitIgnoresForwardingHeaders(t *testing.T) {
	handler, _ := newTestHandler(t, "2-M")

	var codes []int
	for i := range 4 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"nobody@example.com","password":"whatever1"}`))
		req.Header.Set("Content-Type", "application/json")
		addr := fmt.Sprintf("198.51.100.%d", i+1)
		req.Header.Set("X-Real-IP", addr)
		req.Header.Set("X-Forwarded-For", addr)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	handler, srv := newTestHandler(t, "100-M")
	c := &testClient{t: t, handler: handler}
	c.register("chef@example.com")

	srv.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/auth/me", nil).Code)
}

func TestInventoryCostPerUnitAndValidation(t *testing.T) {
	c := newClient(t)

	id := c.create("/api/inventory", map[string]any{
		"name": "Olive oil", "category": "dry", "size": "3", "unit": "L", "price_per_unit": "9.00",
	})
	rec := c.do(http.MethodGet, "/api/inventory/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[map[string]any](t, rec)
	assert.Equal(t, "3.00", item["cost_per_unit"])
	assert.Equal(t, "Olive oil", item["name"])

	flourID := c.create("/api/inventory", map[string]any{
		"name": "Flour", "category": "dry", "size": "1000", "unit": "g", "price_per_unit": "2.50",
	})
	flour := decode[map[string]any](t, c.do(http.MethodGet, "/api/inventory/"+flourID, nil))
	assert.Equal(t, "0.0025", flour["cost_per_unit"])
	assert.Equal(t, "0.0025", flour["cost_per_unit_exact"])

	bad := c.do(http.MethodPost, "/api/inventory", map[string]any{"name": "", "category": "gadgets"})
	require.Equal(t, http.StatusUnprocessableEntity, bad.Code)
	errs := decode[map[string]map[string]string](t, bad)["errors"]
	for _, field := range []string{"name", "category", "price_per_unit"} {
		assert.Contains(t, errs, field)
	}

	unknownSupplier := c.do(http.MethodPost, "/api/inventory", map[string]any{
		"name": "Salt", "category": "dry", "price_per_unit": "1", "supplier_id": "missing",
	})
	require.Equal(t, http.StatusUnprocessableEntity, unknownSupplier.Code)
	assert.Contains(t, decode[map[string]map[string]string](t, unknownSupplier)["errors"], "supplier_id")

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/inventory/missing", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/inventory?category=gadgets", nil).Code)
}

func TestOutOfRangeAmountsAreRejected(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/inventory", map[string]any{
		"name": "Saffron", "category": "dry", "size": "1", "price_per_unit": "1e100000000",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "number is out of range", decode[map[string]map[string]string](t, rec)["errors"]["price_per_unit"])

	rec = c.do(http.MethodPost, "/api/dishes", map[string]any{"name": "Paella", "sell_price": "1e-100000000"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[map[string]map[string]string](t, rec)["errors"], "sell_price")

	rec = c.do(http.MethodPost, "/api/dishes/preview", map[string]any{"name": "Paella", "sell_price": "1e100000000"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.00%", decode[map[string]map[string]string](t, rec)["summary"]["margin"])
}

func TestDishCreateReloadAndSummary(t *testing.T) {
	c := newClient(t)
	pattyID, sauceID := c.burgerCatalog()

	dishID := c.create("/api/dishes", map[string]any{
		"name":       "Burger",
		"sell_price": "18.99",
		"ingredients": []map[string]any{
			{"inventory_id": pattyID, "quantity": "2", "unit": "pc"},
			{"recipe_id": sauceID, "quantity": "1"},
		},
	})

	rec := c.do(http.MethodGet, "/api/dishes/"+dishID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dish struct {
		Name        string `json:"name"`
		SellPrice   string `json:"sell_price"`
		Ingredients []struct {
			InventoryID *string `json:"inventory_id"`
			RecipeID    *string `json:"recipe_id"`
			Quantity    string  `json:"quantity"`
		} `json:"ingredients"`
		Summary struct {
			Cost   string `json:"cost"`
			Profit string `json:"profit"`
			Margin string `json:"margin"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dish))
	assert.Equal(t, "Burger", dish.Name)
	assert.Equal(t, "18.99", dish.SellPrice)
	require.Len(t, dish.Ingredients, 2)
	require.NotNil(t, dish.Ingredients[0].InventoryID)
	assert.Equal(t, pattyID, *dish.Ingredients[0].InventoryID)
	assert.Nil(t, dish.Ingredients[0].RecipeID)
	require.NotNil(t, dish.Ingredients[1].RecipeID)
	assert.Equal(t, sauceID, *dish.Ingredients[1].RecipeID)
	assert.Equal(t, "16.00", dish.Summary.Cost)
	assert.Equal(t, "2.99", dish.Summary.Profit)
	assert.Equal(t, "15.75%", dish.Summary.Margin)

	// Derived figures follow the current inventory price.
	update := c.do(http.MethodPut, "/api/inventory/"+pattyID, map[string]any{
		"name": "Beef patty", "category": "meat", "size": "2", "unit": "pc", "price_per_unit": "20",
	})
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())

	list := c.do(http.MethodGet, "/api/dishes", nil)
	require.Equal(t, http.StatusOK, list.Code)
	dishes := decode[[]map[string]any](t, list)
	require.Len(t, dishes, 1)
	summary := dishes[0]["summary"].(map[string]any)
	assert.Equal(t, "26.00", summary["cost"])
	assert.Equal(t, "-7.01", summary["profit"])

	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, "/api/recipes/"+sauceID, nil).Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, "/api/inventory/"+pattyID, nil).Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/dishes/"+dishID, nil).Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/recipes/"+sauceID, nil).Code)
}

func TestDishIngredientNeedsExactlyOneReference(t *testing.T) {
	c := newClient(t)
	pattyID, sauceID := c.burgerCatalog()

	for name, line := range map[string]map[string]any{
		"both":    {"inventory_id": pattyID, "recipe_id": sauceID, "quantity": "1"},
		"neither": {"quantity": "1"},
	} {
		rec := c.do(http.MethodPost, "/api/dishes", map[string]any{
			"name": "Odd", "sell_price": "10", "ingredients": []map[string]any{line},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, name)
		errs := decode[map[string]map[string]string](t, rec)["errors"]
		assert.Equal(t, map[string]string{"ingredient": "each ingredient must reference exactly one inventory item or recipe"}, errs, name)
	}
}

func TestDishValidationAndForeignReferences(t *testing.T) {
	c := newClient(t)
	pattyID, _ := c.burgerCatalog()

	rec := c.do(http.MethodPost, "/api/dishes", map[string]any{
		"name": "", "sell_price": 0,
		"ingredients": []map[string]any{
			{"inventory_id": pattyID, "quantity": "0"},
			{"inventory_id": pattyID, "quantity": "1"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode[map[string]map[string]string](t, rec)["errors"]
	for _, field := range []string{"name", "sell_price", "quantity", "duplicate"} {
		assert.Contains(t, errs, field)
	}

	other := c.as("sous@example.com")
	foreign := other.do(http.MethodPost, "/api/dishes", map[string]any{
		"name": "Stolen", "sell_price": "5",
		"ingredients": []map[string]any{{"inventory_id": pattyID, "quantity": "1"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, foreign.Code)
	assert.Contains(t, decode[map[string]map[string]string](t, foreign)["errors"], "ingredient")
}

func TestRecipeUpdateReplacesLinesAndReportsCost(t *testing.T) {
	c := newClient(t)
	pattyID, sauceID := c.burgerCatalog()

	rec := c.do(http.MethodPut, "/api/recipes/"+sauceID, map[string]any{
		"name":  "Patty sauce",
		"units": 4,
		"ingredients": []map[string]any{
			{"inventory_id": pattyID, "quantity": "2"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recipe := decode[map[string]any](t, rec)
	assert.Equal(t, "10.00", recipe["cost"])
	assert.Equal(t, "2.50", recipe["cost_per_unit"])
	assert.Len(t, recipe["ingredients"], 1)
}

func TestPreviewEndpoints(t *testing.T) {
	c := newClient(t)
	pattyID, sauceID := c.burgerCatalog()

	rec := c.do(http.MethodPost, "/api/dishes/preview", map[string]any{
		"name":       "",
		"sell_price": "18.99",
		"ingredients": []map[string]any{
			{"inventory_id": pattyID, "quantity": "2"},
			{"recipe_id": sauceID, "quantity": "1"},
			{"inventory_id": pattyID, "quantity": "oops"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dish struct {
		Summary map[string]string `json:"summary"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dish))
	assert.Equal(t, "16.00", dish.Summary["cost"])
	assert.Contains(t, dish.Errors, "name")
	assert.Contains(t, dish.Errors, "quantity")

	rec = c.do(http.MethodPost, "/api/recipes/preview", map[string]any{
		"name":        "Sliders",
		"units":       "4",
		"ingredients": []map[string]any{{"inventory_id": pattyID, "quantity": "2"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recipe := decode[map[string]any](t, rec)
	assert.Equal(t, "10.00", recipe["cost"])
	assert.Equal(t, "2.50", recipe["cost_per_unit"])
	assert.Nil(t, recipe["errors"])

	metricsRec := c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), `costline_cost_previews_total{kind="dish"} 1`)
}

func TestInventoryExportFollowsFilters(t *testing.T) {
	c := newClient(t)
	supplierID := c.create("/api/suppliers", map[string]any{"name": "Harbor Produce"})
	c.create("/api/inventory", map[string]any{
		"name": "Tomato", "category": "produce", "size": "5", "unit": "kg", "price_per_unit": "10", "supplier_id": supplierID,
	})
	c.create("/api/inventory", map[string]any{"name": "Flour", "category": "dry", "price_per_unit": "5"})

	rec := c.do(http.MethodGet, "/api/inventory/export.csv?category=produce", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Tomato", "produce", "", "5", "kg", "10", "", "2.00", "Harbor Produce"}, records[1])
}

func TestDraftsRoundTripAndClearOnCreate(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/api/drafts/dish:42", map[string]any{}).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/drafts/dish:new", nil).Code)

	save := c.do(http.MethodPut, "/api/drafts/inventory:new", map[string]any{
		"name": "Olive oil", "price_per_unit": "9.", "dirty": true,
	})
	require.Equal(t, http.StatusNoContent, save.Code, save.Body.String())

	rec := c.do(http.MethodGet, "/api/drafts/inventory:new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[map[string]any](t, rec)
	assert.Equal(t, "Olive oil", draft["name"])
	assert.Equal(t, "9.", draft["price_per_unit"])
	assert.Equal(t, true, draft["dirty"])

	other := c.as("sous@example.com")
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodGet, "/api/drafts/inventory:new", nil).Code)

	c.create("/api/inventory", map[string]any{"name": "Olive oil", "category": "dry", "price_per_unit": "9"})
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/drafts/inventory:new", nil).Code)

	require.Equal(t, http.StatusNoContent, c.do(http.MethodPut, "/api/drafts/dish:new", map[string]any{"name": "Soup"}).Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/drafts/dish:new", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/drafts/dish:new", nil).Code)
}

func TestDraftEditsPersistAndPreview(t *testing.T) {
	c := newClient(t)
	pattyID, sauceID := c.burgerCatalog()

	rec := c.do(http.MethodPatch, "/api/drafts/dish:new", []map[string]any{
		{"op": "set", "field": "name", "value": "Burger"},
		{"op": "set", "field": "sell_price", "value": "18.99"},
		{"op": "add_line", "line": map[string]any{"inventory_id": pattyID, "quantity": "2"}},
		{"op": "add_line", "line": map[string]any{"recipe_id": sauceID, "quantity": "1"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Form    map[string]any `json:"form"`
		Preview struct {
			Summary map[string]string `json:"summary"`
		} `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "16.00", out.Preview.Summary["cost"])
	assert.Equal(t, "2.99", out.Preview.Summary["profit"])
	assert.Equal(t, true, out.Form["dirty"])

	rec = c.do(http.MethodPatch, "/api/drafts/dish:new", []map[string]any{{"op": "remove_line", "index": 1}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "10.00", out.Preview.Summary["cost"])

	stored := decode[map[string]any](t, c.do(http.MethodGet, "/api/drafts/dish:new", nil))
	assert.Equal(t, "Burger", stored["name"])
	assert.Len(t, stored["ingredients"], 1)

	bad := c.do(http.MethodPatch, "/api/drafts/dish:new", []map[string]any{{"op": "remove_line", "index": 7}})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPatch, "/api/drafts/inventory:new", []map[string]any{{"op": "add_line"}}).Code)

	rec = c.do(http.MethodPatch, "/api/drafts/inventory:new", []map[string]any{
		{"op": "set", "field": "size", "value": "1000"},
		{"op": "set", "field": "price_per_unit", "value": "2.50"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	inv := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "0.0025", inv["preview"]["cost_per_unit"])
	assert.Contains(t, inv["form"]["errors"], "name")
}
