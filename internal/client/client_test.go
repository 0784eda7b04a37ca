package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/config"
)

func testQueryConfig(baseURL string) *config.QueryConfig {
	return &config.QueryConfig{
		BaseURL:       baseURL,
		Timeout:       2 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Millisecond,
	}
}

func TestRecipeByIDDecodesRecipe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/recipes/55" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Шарлотка","cooking_time":50,"description":"...","image":null,"ingredients":[{"count":"4 шт.","ingredient":{"name":"яблоко"}}]}`))
	}))
	defer srv.Close()

	c := New(testQueryConfig(srv.URL))
	recipe, err := c.RecipeByID(context.Background(), 55)
	if err != nil {
		t.Fatalf("RecipeByID failed: %v", err)
	}
	if recipe.Name != "Шарлотка" || recipe.CookingTime != 50 {
		t.Errorf("Unexpected recipe: %+v", recipe)
	}
	// The wire shape carries no id; the client backfills it for callbacks.
	if recipe.ID != 55 {
		t.Errorf("Expected backfilled id 55, got %d", recipe.ID)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].Ingredient.Name != "яблоко" {
		t.Errorf("Unexpected ingredient lines: %+v", recipe.Ingredients)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"recipe 99 missing"}}`))
	}))
	defer srv.Close()

	c := New(testQueryConfig(srv.URL))
	_, err := c.RecipeByID(context.Background(), 99)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Expected catalog.ErrNotFound, got %v", err)
	}
}

func TestBadRequestMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"invalid_argument","message":"empty ids"}}`))
	}))
	defer srv.Close()

	c := New(testQueryConfig(srv.URL))
	_, err := c.RecipesByCategories(context.Background(), "any", nil)
	if !errors.Is(err, catalog.ErrInvalidArgument) {
		t.Errorf("Expected catalog.ErrInvalidArgument, got %v", err)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"gone"}}`))
	}))
	defer srv.Close()

	c := New(testQueryConfig(srv.URL))
	if _, err := c.RecipeByID(context.Background(), 1); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected NotFound, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 request for a 404, got %d", got)
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"борщ"}]`))
	}))
	defer srv.Close()

	c := New(testQueryConfig(srv.URL))
	refs, err := c.RecipesByIngredients(context.Background(), "any", []int64{5})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "борщ" {
		t.Errorf("Unexpected refs: %+v", refs)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestExhaustedRetriesReturnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testQueryConfig(srv.URL))
	_, err := c.DailyMenu(context.Background())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if te.Status != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", te.Status)
	}
}

func TestConnectionRefusedIsTransportError(t *testing.T) {
	// Grab an ephemeral port, then close the listener behind it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cfg := testQueryConfig(srv.URL)
	cfg.RetryAttempts = 1
	c := New(cfg)

	_, err := c.Categories(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("Expected TransportError for refused connection, got %v", err)
	}
}

func TestBreakerPassesDomainErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"missing"}}`))
	}))
	defer srv.Close()

	b := NewBreakerClient(testQueryConfig(srv.URL))

	// Domain errors are valid answers; they must never trip the breaker.
	for i := 0; i < 20; i++ {
		if _, err := b.RecipeByID(context.Background(), 1); !errors.Is(err, catalog.ErrNotFound) {
			t.Fatalf("Call %d: expected NotFound, got %v", i, err)
		}
	}
}

func TestBreakerOpensOnTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testQueryConfig(srv.URL)
	cfg.RetryAttempts = 1
	b := NewBreakerClient(cfg)

	// Enough consecutive transport failures to trip the breaker.
	for i := 0; i < 10; i++ {
		_, _ = b.RandomRecipe(context.Background())
	}

	_, err := b.RandomRecipe(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError once open, got %v", err)
	}
}
