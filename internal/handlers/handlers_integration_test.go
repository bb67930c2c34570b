package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired the way main.go wires them. Each test gets its
// own named in-memory database so state does not leak between tests.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Product{})
	assert.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo, nil) // nil: no event publishing in tests
	authService := services.NewAuthService(userRepo, jwtSecret)

	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterRoutes(protectedRoutes)

	return app
}

// registerAndLogin creates a user and returns a valid bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{
		"username": username,
		"password": "password123",
	})
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", body, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body []byte, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAuthRegisterLoginRefresh(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "authuser")

	// Duplicate registration conflicts.
	body, _ := json.Marshal(map[string]string{
		"username": "authuser",
		"email":    "authuser@example.com",
		"password": "password123",
	})
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// A valid token can be exchanged for a fresh one.
	body, _ = json.Marshal(map[string]string{"token": token})
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", body, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshResp map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&refreshResp))
	resp.Body.Close()
	assert.NotEmpty(t, refreshResp["token"])

	// Garbage cannot.
	body, _ = json.Marshal(map[string]string{"token": "not.a.token"})
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProductEndpointsRequireAuth(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", []byte(`{}`), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/check-expiration/GT-001", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProductLifecycle(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "produser")

	// --- Create ---
	createBody, _ := json.Marshal(map[string]interface{}{
		"name":                "Georgian Tea",
		"unique_code":         "GT-001",
		"quantity":            4,
		"type":                1,
		"production_date":     "2024-01-01",
		"expiration_duration": "2 month",
	})
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", createBody, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var createResp struct {
		Message string         `json:"message"`
		Product models.Product `json:"product"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&createResp))
	resp.Body.Close()
	assert.NotZero(t, createResp.Product.ID)
	assert.NotEmpty(t, createResp.Product.UserID, "product is bound to its creator")

	// --- Duplicate code is caught by the pre-check ---
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", createBody, token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var dupResp struct {
		Errors map[string]string `json:"errors"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&dupResp))
	resp.Body.Close()
	assert.Contains(t, dupResp.Errors, "unique_code")

	// --- Partial update: only quantity changes ---
	patchBody, _ := json.Marshal(map[string]interface{}{"quantity": 5})
	target := fmt.Sprintf("/api/v1/products/%d", createResp.Product.ID)
	resp = doJSON(t, app, http.MethodPatch, target, patchBody, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updateResp struct {
		Product models.Product `json:"product"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&updateResp))
	resp.Body.Close()
	assert.Equal(t, 5, updateResp.Product.Quantity)
	assert.Equal(t, "Georgian Tea", updateResp.Product.Name)
	assert.Equal(t, 1, updateResp.Product.Type)
	assert.Equal(t, "2 month", updateResp.Product.ExpirationDuration)
	assert.Equal(t, "2024-01-01", updateResp.Product.ProductionDate.Format("2006-01-02"))

	// --- Expiration check ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/check-expiration/GT-001", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var expResp services.ExpirationStatus
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&expResp))
	resp.Body.Close()
	assert.Equal(t, "2024-03-01", expResp.ExpirationDate)
	assert.True(t, expResp.IsExpired) // the 2024 production date has long passed

	// --- Stock/type check ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/check-product/GT-001", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stockResp services.StockStatus
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&stockResp))
	resp.Body.Close()
	assert.True(t, stockResp.InStock)
	assert.Equal(t, 5, stockResp.Quantity)
	assert.Equal(t, "food", stockResp.Type)

	// --- Unknown code is a 404, not a validation failure ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/check-expiration/NOPE-99", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/check-product/NOPE-99", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// --- Update of a missing product is a 404 ---
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/products/9999", patchBody, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "validuser")

	body, _ := json.Marshal(map[string]interface{}{
		"name":                "Too short", // 9 characters
		"unique_code":         "",
		"type":                4,
		"production_date":     "01-01-2024",
		"expiration_duration": "",
	})
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", body, token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errResp struct {
		Errors map[string]string `json:"errors"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	resp.Body.Close()
	assert.Contains(t, errResp.Errors, "name")
	assert.Contains(t, errResp.Errors, "unique_code")
	assert.Contains(t, errResp.Errors, "type")
	assert.Contains(t, errResp.Errors, "production_date")
	assert.Contains(t, errResp.Errors, "expiration_duration")
}
