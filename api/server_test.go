package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"recipe-cost/core/engine"
	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type memoryStore struct {
	ingredients []*types.Ingredient
}

func (m *memoryStore) List(ctx context.Context) ([]*types.Ingredient, error) {
	return m.ingredients, nil
}

func (m *memoryStore) Get(ctx context.Context, name string) (*types.Ingredient, error) {
	for _, ing := range m.ingredients {
		if ing.Name == name {
			return ing, nil
		}
	}
	return nil, apperrors.NotFound("ingredient", name)
}

func newTestServer(store IngredientStore) *Server {
	eng := engine.New(engine.Config{
		Currency: types.CurrencyGBP,
		Policy:   types.MarginPolicy{TargetMarginPercent: d("65"), MinMarginPercent: d("55")},
	})
	return NewServerWithStore("test", eng, store, nil)
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
	}
	if _, err := uuid.Parse(out["request_id"].(string)); err != nil {
		t.Errorf("%s %s: expected a uuid request_id, got %v", method, path, out["request_id"])
	}
	if rec.Header().Get("X-Request-ID") != out["request_id"] {
		t.Errorf("%s %s: header and body request IDs differ", method, path)
	}
	return rec, out
}

func TestEndpoints(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		check  func(t *testing.T, out map[string]interface{})
	}{
		{
			name:   "convert",
			path:   "/convert",
			body:   `{"amount":"2","from":"lb","to":"g"}`,
			status: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				if out["amount"] != "907.18474" || out["unit"] != "g" {
					t.Errorf("unexpected conversion: %v", out)
				}
			},
		},
		{
			name:   "convert accepts JSON numbers",
			path:   "/convert",
			body:   `{"amount":1,"from":"cups","to":"g","density":"1"}`,
			status: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				if out["amount"] != "236.5882365" {
					t.Errorf("unexpected conversion: %v", out)
				}
			},
		},
		{
			name:   "convert without density",
			path:   "/convert",
			body:   `{"amount":"1","from":"cups","to":"g"}`,
			status: http.StatusBadRequest,
			check:  errorCode("INCOMPATIBLE_UNITS"),
		},
		{
			name:   "unknown unit",
			path:   "/convert",
			body:   `{"amount":"1","from":"stone","to":"g"}`,
			status: http.StatusBadRequest,
			check:  errorCode("UNIT_ERROR"),
		},
		{
			name:   "usage cost",
			path:   "/usage-cost",
			body:   `{"quantity":"1","unit":"kg","pack":{"pack_quantity":"500","pack_unit":"g","pack_price":"2.50"}}`,
			status: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				if out["cost"] != "5" {
					t.Errorf("expected cost 5, got %v", out["cost"])
				}
			},
		},
		{
			name:   "usage cost rejects an empty pack",
			path:   "/usage-cost",
			body:   `{"quantity":"1","unit":"kg","pack":{"pack_quantity":"0","pack_unit":"g","pack_price":"2.50"}}`,
			status: http.StatusBadRequest,
			check:  errorCode("VALIDATION_ERROR"),
		},
		{
			name:   "best tier",
			path:   "/best-tier",
			body:   `{"quantity_needed":"12","standard_pack_quantity":"1.5","standard_pack_price":"1.20","tiers":[{"pack_quantity":"16","pack_price":"9.00"}]}`,
			status: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				if out["source"] != "batch" || out["total_cost"] != "9" || out["packs_needed"] != "1" {
					t.Errorf("unexpected tier: %v", out)
				}
			},
		},
		{
			name:   "best tier with a zero standard pack",
			path:   "/best-tier",
			body:   `{"quantity_needed":"12","standard_pack_quantity":"0","standard_pack_price":"1.20"}`,
			status: http.StatusUnprocessableEntity,
			check:  errorCode("DIVISION_ERROR"),
		},
		{
			name:   "margin with server policy",
			path:   "/margin",
			body:   `{"cost":"3.50","current_price":"10"}`,
			status: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				if out["status"] != "good" || out["suggested_price"] != "10" || out["actual_margin"] != "65" {
					t.Errorf("unexpected margin: %v", out)
				}
			},
		},
		{
			name:   "margin without price",
			path:   "/margin",
			body:   `{"cost":"3.50","target_margin":"30","min_margin":"20"}`,
			status: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				if out["status"] != "no-price" || out["suggested_price"] != "5" || out["actual_margin"] != nil {
					t.Errorf("unexpected margin: %v", out)
				}
			},
		},
		{
			name:   "malformed JSON",
			path:   "/margin",
			body:   `{"cost":`,
			status: http.StatusBadRequest,
			check:  errorCode("INVALID_JSON"),
		},
		{
			name:   "unknown field",
			path:   "/margin",
			body:   `{"cost":"1","price":"2"}`,
			status: http.StatusBadRequest,
			check:  errorCode("INVALID_JSON"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, s, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			tt.check(t, out)
		})
	}
}

func errorCode(code string) func(t *testing.T, out map[string]interface{}) {
	return func(t *testing.T, out map[string]interface{}) {
		e, ok := out["error"].(map[string]interface{})
		if !ok || e["code"] != code {
			t.Errorf("expected error code %s, got %v", code, out["error"])
		}
	}
}

func TestRecipeCost(t *testing.T) {
	s := newTestServer(nil)
	body := `{
  "recipe": {
    "name": "shortbread",
    "yield_quantity": "12",
    "yield_unit": "biscuits",
    "selling_price": "0.60",
    "items": [
      {"ingredient": {"name": "flour", "pack": {"pack_quantity": "1.5", "pack_unit": "kg", "pack_price": "1.20"}}, "quantity": "300", "unit": "g"},
      {"ingredient": {"name": "butter", "pack": {"pack_quantity": "250", "pack_unit": "g", "pack_price": "2.50"}}, "quantity": "200", "unit": "g"},
      {"ingredient": {"name": "sugar", "pack": {"pack_quantity": "1", "pack_unit": "kg", "pack_price": "1.00"}}, "quantity": "100", "unit": "g"}
    ]
  }
}`

	rec, out := do(t, s, http.MethodPost, "/recipe-cost", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cost := out["cost"].(map[string]interface{})
	if cost["total_cost"] != "2.34" || cost["cost_per_yield_unit"] != "0.195" {
		t.Errorf("unexpected cost: %v", cost)
	}
	m := out["margin"].(map[string]interface{})
	if m["status"] != "good" || m["actual_margin"] != "67.5" {
		t.Errorf("unexpected margin: %v", m)
	}
	if out["currency"] != "GBP" {
		t.Errorf("expected GBP, got %v", out["currency"])
	}
}

func TestRecipeCostErrors(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing recipe", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero yield", `{"recipe":{"name":"r","yield_quantity":"0"}}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"item without ingredient", `{"recipe":{"name":"r","yield_quantity":"1","items":[{"quantity":"1","unit":"g"}]}}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{
			"unknown usage unit",
			`{"recipe":{"name":"r","yield_quantity":"1","items":[{"ingredient":{"name":"oil","pack":{"pack_quantity":"1","pack_unit":"l","pack_price":"3"}},"quantity":"1","unit":"glug"}]}}`,
			http.StatusBadRequest,
			"UNIT_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, s, http.MethodPost, "/recipe-cost", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			errorCode(tt.code)(t, out)
		})
	}
}

func TestIngredients(t *testing.T) {
	store := &memoryStore{ingredients: []*types.Ingredient{
		{ID: "1", Name: "flour", Pack: types.PackSpec{PackQuantity: d("1.5"), PackUnit: "kg", PackPrice: d("1.20")}},
	}}
	s := newTestServer(store)

	rec, out := do(t, s, http.MethodGet, "/ingredients", "")
	if rec.Code != http.StatusOK || out["count"] != float64(1) {
		t.Errorf("unexpected list: %d %v", rec.Code, out)
	}

	rec, out = do(t, s, http.MethodGet, "/ingredients/flour", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ing := out["ingredient"].(map[string]interface{}); ing["name"] != "flour" {
		t.Errorf("unexpected ingredient: %v", ing)
	}

	rec, out = do(t, s, http.MethodGet, "/ingredients/saffron", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	errorCode("NOT_FOUND")(t, out)
}

func TestIngredientsWithoutCatalog(t *testing.T) {
	rec, out := do(t, newTestServer(nil), http.MethodGet, "/ingredients", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	errorCode("CATALOG_UNAVAILABLE")(t, out)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(nil)

	rec, out := do(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || out["status"] != "healthy" {
		t.Errorf("unexpected health: %d %v", rec.Code, out)
	}

	rec, out = do(t, s, http.MethodGet, "/version", "")
	if rec.Code != http.StatusOK || out["version"] != "test" || out["currency"] != "GBP" {
		t.Errorf("unexpected version: %d %v", rec.Code, out)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(nil)
	id := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != id {
		t.Errorf("expected caller request ID %s, got %s", id, rec.Header().Get("X-Request-ID"))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Unit("stone"), http.StatusBadRequest},
		{apperrors.IncompatibleUnits("g", "each"), http.StatusBadRequest},
		{apperrors.Validation("bad"), http.StatusBadRequest},
		{apperrors.Parsing("bad", nil), http.StatusBadRequest},
		{apperrors.Division("yield"), http.StatusUnprocessableEntity},
		{apperrors.NotFound("ingredient", "x"), http.StatusNotFound},
		{apperrors.Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, got)
		}
	}
}
