package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProductApp mounts the product routes at the root over a memory store.
func setupProductApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(zerolog.Nop())})
	service := services.NewProductService(repositories.NewMemoryProductRepository(), nil, zerolog.Nop())
	handlers.NewProductHandler(service, middleware.NewValidator(), zerolog.Nop()).RegisterRoutes(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestProductHandler_CreateWithDescription(t *testing.T) {
	app := setupProductApp(t)

	status, body := send(t, app, http.MethodPost, "/products", `{"name":"Mug","price":4.5,"description":"Ceramic"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Ceramic", body["description"])
}

func TestProductHandler_CreateValidationMessages(t *testing.T) {
	app := setupProductApp(t)

	status, body := send(t, app, http.MethodPost, "/products", `{"name":"","price":"1e999"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]interface{}{
		"name":  "The name field is required.",
		"price": "The price field must be a number.",
	}, body["errors"])
}

func TestProductHandler_PatchIsUpdate(t *testing.T) {
	app := setupProductApp(t)

	status, _ := send(t, app, http.MethodPost, "/products", `{"name":"Mug","price":4.5}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := send(t, app, http.MethodPatch, "/products/1", `{"name":"Big mug","price":"6"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Product updated successfully", body["message"])
	product := body["product"].(map[string]interface{})
	assert.Equal(t, "Big mug", product["name"])
	assert.Equal(t, float64(6), product["price"])
}

func TestProductHandler_UpdateRejectsInvalidFields(t *testing.T) {
	app := setupProductApp(t)

	status, body := send(t, app, http.MethodPut, "/products/1", `{"name":"   ","price":"free"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]interface{}{
		"name":  "The name field is required.",
		"price": "The price field must be a number.",
	}, body["errors"])

	status, body = send(t, app, http.MethodPut, "/products/1", `{"price":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]interface{}{"price": "The price field is required."}, body["errors"])
}

func TestProductHandler_TrimsInput(t *testing.T) {
	app := setupProductApp(t)

	status, body := send(t, app, http.MethodPost, "/products", `{"name":" Mug ","price":" 4.50 ","description":"  "}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Mug", body["name"])
	assert.Equal(t, 4.5, body["price"])
	assert.Nil(t, body["description"])
}

func TestProductHandler_DeleteHasNoBody(t *testing.T) {
	app := setupProductApp(t)

	send(t, app, http.MethodPost, "/products", `{"name":"Mug","price":4.5}`)
	status, body := send(t, app, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Nil(t, body)
}

func TestErrorHandler_RendersFrameworkErrorsAsJSON(t *testing.T) {
	app := setupProductApp(t)

	status, body := send(t, app, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Cannot GET /unknown", body["error"])

	status, body = send(t, app, http.MethodPost, "/products/1", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method Not Allowed", body["error"])
}
