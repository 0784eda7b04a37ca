// Package client is the bot's HTTP client for the query engine API. It
// retries transport failures with exponential backoff and maps the API's
// error envelope back onto the catalog sentinel errors, so the bot handles
// a remote engine exactly like a local one.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/config"
	"github.com/ppetrovna/povarenok/internal/logging"
	"github.com/ppetrovna/povarenok/internal/models"
)

// Client calls the query engine REST API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryAttempts int
	retryDelay    time.Duration
}

// New creates a query engine client from configuration.
func New(cfg *config.QueryConfig) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
}

// RandomRecipe fetches one uniformly chosen recipe.
func (c *Client) RandomRecipe(ctx context.Context) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := c.get(ctx, "/recipes/random", nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// RecipeByID fetches one recipe. Returns catalog.ErrNotFound for a missing id.
func (c *Client) RecipeByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := c.get(ctx, "/recipes/"+strconv.FormatInt(id, 10), nil, &recipe); err != nil {
		return nil, err
	}
	recipe.ID = id
	return &recipe, nil
}

// DailyMenu fetches the four-slot daily menu.
func (c *Client) DailyMenu(ctx context.Context) (*models.DailyMenu, error) {
	var menu models.DailyMenu
	if err := c.get(ctx, "/menu/day", nil, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// Categories fetches every category, name-ordered.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.get(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// IngredientsByLetter fetches ingredients whose name starts with the letter.
func (c *Client) IngredientsByLetter(ctx context.Context, letter string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	params := url.Values{"startswith": {letter}}
	if err := c.get(ctx, "/ingredients", params, &ingredients); err != nil {
		return nil, err
	}
	return ingredients, nil
}

// RecipesByCategories fetches recipes filtered by category ids. Mode is
// "any" or "all".
func (c *Client) RecipesByCategories(ctx context.Context, mode string, ids []int64) ([]models.RecipeRef, error) {
	var refs []models.RecipeRef
	params := url.Values{"categories": {joinIDs(ids)}}
	if err := c.get(ctx, "/recipes/categories/"+mode, params, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// RecipesByIngredients fetches recipes filtered by ingredient ids. Mode is
// "any" or "only".
func (c *Client) RecipesByIngredients(ctx context.Context, mode string, ids []int64) ([]models.RecipeRef, error) {
	var refs []models.RecipeRef
	params := url.Values{"ingredients": {joinIDs(ids)}}
	if err := c.get(ctx, "/recipes/ingredients/"+mode, params, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// get performs a GET with retries and decodes the response into out.
// Transport failures and 5xx responses are retried; 4xx responses are
// mapped to sentinel errors and returned immediately.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + "/api/v1" + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = c.doGet(ctx, path, endpoint, out)
		if lastErr == nil {
			return nil
		}
		var te *TransportError
		if !errors.As(lastErr, &te) {
			return lastErr
		}

		if attempt < c.retryAttempts-1 {
			logging.Warn().Err(lastErr).
				Int("attempt", attempt+1).
				Int("max_attempts", c.retryAttempts).
				Dur("delay", delay).
				Msg("Retrying query engine request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, apiErrorMessage(resp.Body))
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", catalog.ErrInvalidArgument, apiErrorMessage(resp.Body))
	default:
		return &TransportError{Op: op, Status: resp.StatusCode}
	}
}

// apiErrorMessage extracts the message from the API error envelope, falling
// back to a generic string for malformed bodies.
func apiErrorMessage(body io.Reader) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil || envelope.Error.Message == "" {
		return "request rejected"
	}
	return envelope.Error.Message
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
