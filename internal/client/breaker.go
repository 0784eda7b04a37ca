package client

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ppetrovna/povarenok/internal/config"
	"github.com/ppetrovna/povarenok/internal/logging"
	"github.com/ppetrovna/povarenok/internal/metrics"
	"github.com/ppetrovna/povarenok/internal/models"
)

const breakerName = "query-engine"

// BreakerClient wraps Client with a circuit breaker so a down query engine
// fails fast instead of stacking up timed-out requests across every
// conversation. NotFound and InvalidArgument are valid answers, not
// failures; only transport errors count toward tripping the breaker.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
}

// NewBreakerClient creates a query engine client behind a circuit breaker.
func NewBreakerClient(cfg *config.QueryConfig) *BreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			var te *TransportError
			return err == nil || !errors.As(err, &te)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Query engine circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{client: New(cfg), cb: cb}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// execute runs one client call through the breaker, recording the outcome.
func execute[T any](b *BreakerClient, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})

	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
		err = &TransportError{Op: breakerName, Err: err}
	case err != nil:
		outcome = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, outcome).Inc()

	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (b *BreakerClient) RandomRecipe(ctx context.Context) (*models.Recipe, error) {
	return execute(b, func() (*models.Recipe, error) { return b.client.RandomRecipe(ctx) })
}

func (b *BreakerClient) RecipeByID(ctx context.Context, id int64) (*models.Recipe, error) {
	return execute(b, func() (*models.Recipe, error) { return b.client.RecipeByID(ctx, id) })
}

func (b *BreakerClient) DailyMenu(ctx context.Context) (*models.DailyMenu, error) {
	return execute(b, func() (*models.DailyMenu, error) { return b.client.DailyMenu(ctx) })
}

func (b *BreakerClient) Categories(ctx context.Context) ([]models.Category, error) {
	return execute(b, func() ([]models.Category, error) { return b.client.Categories(ctx) })
}

func (b *BreakerClient) IngredientsByLetter(ctx context.Context, letter string) ([]models.Ingredient, error) {
	return execute(b, func() ([]models.Ingredient, error) { return b.client.IngredientsByLetter(ctx, letter) })
}

func (b *BreakerClient) RecipesByCategories(ctx context.Context, mode string, ids []int64) ([]models.RecipeRef, error) {
	return execute(b, func() ([]models.RecipeRef, error) { return b.client.RecipesByCategories(ctx, mode, ids) })
}

func (b *BreakerClient) RecipesByIngredients(ctx context.Context, mode string, ids []int64) ([]models.RecipeRef, error) {
	return execute(b, func() ([]models.RecipeRef, error) { return b.client.RecipesByIngredients(ctx, mode, ids) })
}
