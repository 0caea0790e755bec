package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/investalk/backend/internal/marketdata"
	"github.com/investalk/backend/internal/middleware"
	"github.com/investalk/backend/internal/models"
	"github.com/investalk/backend/internal/services"
)

type fixedGateway struct {
	snapshot *marketdata.Snapshot
}

func (g *fixedGateway) Fetch(ctx context.Context, symbol string) (*marketdata.Snapshot, error) {
	s := *g.snapshot
	s.Symbol = symbol
	return &s, nil
}

func price(v float64) *float64 { return &v }

// newTestRouter wires the authenticated API surface against an in-memory
// database and a canned market data gateway.
func newTestRouter(t *testing.T) (*mux.Router, *gorm.DB, services.AuthService, services.UserService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.FavoriteStock{}); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	secret := []byte("test-secret")
	gateway := &fixedGateway{snapshot: &marketdata.Snapshot{Price: price(170.2)}}

	authService := services.NewAuthService(db, secret)
	userService := services.NewUserService(db)
	watchlistService := services.NewWatchlistService(db, gateway, time.Second, 4)

	authHandler := NewAuthHandler(authService, userService)
	userHandler := NewUserHandler(userService)
	watchlistHandler := NewWatchlistHandler(watchlistService, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/login", authHandler.Login).Methods("POST")

	authRouter := router.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(secret))
	userHandler.RegisterRoutes(authRouter)
	watchlistHandler.RegisterRoutes(authRouter)

	return router, db, authService, userService
}

func doRequest(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWatchlistEndpoints(t *testing.T) {
	router, _, authService, userService := newTestRouter(t)

	user, err := userService.Register(context.Background(), "Seonga", "seonga@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	token, err := authService.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	// Missing token
	rec := doRequest(t, router, http.MethodGet, "/api/user/favorite-stocks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	// Add
	rec = doRequest(t, router, http.MethodPost, "/api/user/favorite-stocks", token,
		map[string]interface{}{"symbol": "aapl", "desiredPrice": 150.0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for add, got %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate add, different casing
	rec = doRequest(t, router, http.MethodPost, "/api/user/favorite-stocks", token,
		map[string]interface{}{"symbol": "AAPL"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate add, got %d", rec.Code)
	}

	// Blank symbol
	rec = doRequest(t, router, http.MethodPost, "/api/user/favorite-stocks", token,
		map[string]interface{}{"symbol": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank symbol, got %d", rec.Code)
	}

	// Update desired price
	rec = doRequest(t, router, http.MethodPut, "/api/user/favorite-stocks/AAPL", token,
		map[string]interface{}{"desiredPrice": 160.0})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for update, got %d: %s", rec.Code, rec.Body.String())
	}

	// List
	rec = doRequest(t, router, http.MethodGet, "/api/user/favorite-stocks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for list, got %d", rec.Code)
	}
	var enriched []services.EnrichedStock
	if err := json.Unmarshal(rec.Body.Bytes(), &enriched); err != nil {
		t.Fatalf("Failed to decode list response: %v", err)
	}
	if len(enriched) != 1 {
		t.Fatalf("Expected one entry, got %d", len(enriched))
	}
	if enriched[0].Symbol != "AAPL" || enriched[0].Price != 170.2 {
		t.Errorf("Unexpected enriched entry: %+v", enriched[0])
	}
	if enriched[0].EarningsDate != services.NotAvailable {
		t.Errorf("Expected earnings date sentinel, got %q", enriched[0].EarningsDate)
	}
	if enriched[0].DesiredPrice == nil || *enriched[0].DesiredPrice != 160.0 {
		t.Errorf("Expected desired price 160.0, got %v", enriched[0].DesiredPrice)
	}

	// Remove, then remove again
	rec = doRequest(t, router, http.MethodDelete, "/api/user/favorite-stocks/AAPL", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for remove, got %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodDelete, "/api/user/favorite-stocks/AAPL", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for second remove, got %d", rec.Code)
	}

	// Empty list is 200 with an empty array
	rec = doRequest(t, router, http.MethodGet, "/api/user/favorite-stocks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for empty list, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/register", "",
		models.RegisterRequest{Name: "Seonga", Email: "seonga@example.com", Password: "hunter22"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for register, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/api/register", "",
		models.RegisterRequest{Name: "Twin", Email: "seonga@example.com", Password: "pw"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate register, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/login", "",
		models.LoginRequest{Email: "seonga@example.com", Password: "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for login, got %d", rec.Code)
	}
	var tokenResp models.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}
	if tokenResp.AccessToken == "" || tokenResp.TokenType != "bearer" {
		t.Errorf("Unexpected token response: %+v", tokenResp)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/user-info", tokenResp.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for user-info, got %d", rec.Code)
	}
	var principal models.Principal
	if err := json.Unmarshal(rec.Body.Bytes(), &principal); err != nil {
		t.Fatalf("Failed to decode principal: %v", err)
	}
	if principal.Email != "seonga@example.com" {
		t.Errorf("Unexpected principal: %+v", principal)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/login", "",
		models.LoginRequest{Email: "seonga@example.com", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad credentials, got %d", rec.Code)
	}
}
