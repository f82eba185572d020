package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mateo-stay/api-tienda-hot-wheels/internal/auth"
	"github.com/mateo-stay/api-tienda-hot-wheels/internal/domain"
	"github.com/mateo-stay/api-tienda-hot-wheels/internal/middleware"
	"github.com/mateo-stay/api-tienda-hot-wheels/internal/repository"
	"github.com/mateo-stay/api-tienda-hot-wheels/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repositories for testing

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrEmailTaken
	}
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, existing := range m.users {
		if existing.ID == user.ID {
			if other, taken := m.users[user.Email]; taken && other.ID != user.ID {
				return repository.ErrEmailTaken
			}
			delete(m.users, email)
			copied := *user
			m.users[user.Email] = &copied
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, existing := range m.users {
		if existing.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context, role string) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []*domain.User{}
	for _, user := range m.users {
		if role == "" || user.Role == role {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, nil
}

type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := []*domain.Product{}
	for _, product := range m.products {
		copied := *product
		products = append(products, &copied)
	}
	return products, nil
}

// newTestRouter assembles the full HTTP surface over mock repositories,
// with the real auth middleware and token service.
func newTestRouter(t *testing.T) (chi.Router, *mockUserRepository, *mockProductRepository, *auth.TokenService) {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	userRepo := newMockUserRepository()
	productRepo := newMockProductRepository()

	userService := service.NewUserService(userRepo, tokens)
	catalogService := service.NewCatalogService(productRepo)

	authMiddleware := middleware.AuthMiddleware(tokens, logger)
	adminOnly := middleware.RequireAdmin(logger)

	router := chi.NewRouter()
	NewProductHandler(catalogService, logger).RegisterRoutes(router, authMiddleware)
	NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, adminOnly)

	return router, userRepo, productRepo, tokens
}

func doJSON(t *testing.T, router chi.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginAndRoleEnforcement(t *testing.T) {
	router, _, _, tokens := newTestRouter(t)

	// Sign up without a role: stored role must be customer
	rec := doJSON(t, router, http.MethodPost, "/api/usuarios", "", map[string]string{
		"nombre":   "Ana",
		"email":    "ana@x.com",
		"password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var profile UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "customer", profile.Role)
	assert.Equal(t, "Ana", profile.Name)

	// Registering the same email again fails with 400
	rec = doJSON(t, router, http.MethodPost, "/api/usuarios", "", map[string]string{
		"nombre":   "Ana Again",
		"email":    "ana@x.com",
		"password": "pw2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login succeeds and the token's decoded role is customer
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@x.com",
		"password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	claims, err := tokens.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", claims.Subject)
	assert.Equal(t, "customer", claims.Role)

	// A customer token on an admin-only endpoint gets 403
	rec = doJSON(t, router, http.MethodDelete, "/api/usuarios/"+profile.ID, login.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegister_InvalidRole(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/usuarios", "", map[string]string{
		"nombre":   "Ana",
		"email":    "ana@x.com",
		"password": "pw",
		"rol":      "root",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_SameResponseForUnknownEmailAndWrongPassword(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/usuarios", "", map[string]string{
		"nombre":   "Ana",
		"email":    "ana@x.com",
		"password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@x.com",
		"password": "not-the-password",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "pw",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)

	// Identical response shapes so account existence never leaks
	var a, b map[string]interface{}
	require.NoError(t, json.Unmarshal(wrongPassword.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknownEmail.Body.Bytes(), &b))
	assert.Equal(t, a["error"].(map[string]interface{})["message"], b["error"].(map[string]interface{})["message"])
}

func TestDirectoryEndpoints_RequireAdmin(t *testing.T) {
	router, _, _, tokens := newTestRouter(t)

	customerToken, err := tokens.Issue("cliente@x.com", "customer")
	require.NoError(t, err)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/usuarios"},
		{http.MethodGet, "/api/usuarios/admins"},
		{http.MethodGet, "/api/usuarios/" + uuid.NewString()},
		{http.MethodPut, "/api/usuarios/" + uuid.NewString()},
		{http.MethodDelete, "/api/usuarios/" + uuid.NewString()},
	}

	for _, p := range paths {
		// No token at all: 401 before any role check
		rec := doJSON(t, router, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s without token", p.method, p.path)

		// Customer token: authenticated but forbidden
		rec = doJSON(t, router, p.method, p.path, customerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s with customer token", p.method, p.path)
	}
}

func TestDirectoryAdminFlow(t *testing.T) {
	router, _, _, tokens := newTestRouter(t)

	// Seed one admin and one customer through the public endpoint
	rec := doJSON(t, router, http.MethodPost, "/api/usuarios", "", map[string]string{
		"nombre": "Root", "email": "root@x.com", "password": "pw", "rol": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/usuarios", "", map[string]string{
		"nombre": "Ana", "email": "ana@x.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var ana UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ana))

	adminToken, err := tokens.Issue("root@x.com", "admin")
	require.NoError(t, err)

	// Full listing and role filter
	rec = doJSON(t, router, http.MethodGet, "/api/usuarios", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = doJSON(t, router, http.MethodGet, "/api/usuarios?rol=customer", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var customers []UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "ana@x.com", customers[0].Email)

	rec = doJSON(t, router, http.MethodGet, "/api/usuarios/admins", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var admins []UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &admins))
	require.Len(t, admins, 1)
	assert.Equal(t, "root@x.com", admins[0].Email)

	// Partial update: only the name changes
	rec = doJSON(t, router, http.MethodPut, "/api/usuarios/"+ana.ID, adminToken, map[string]string{
		"nombre": "Ana Maria",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@x.com", updated.Email)
	assert.Equal(t, "customer", updated.Role)

	// Bad role on update
	rec = doJSON(t, router, http.MethodPut, "/api/usuarios/"+ana.ID, adminToken, map[string]string{
		"rol": "root",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete, then the user is gone
	rec = doJSON(t, router, http.MethodDelete, "/api/usuarios/"+ana.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/usuarios/"+ana.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser_NotFound(t *testing.T) {
	router, _, _, tokens := newTestRouter(t)

	adminToken, err := tokens.Issue("root@x.com", "admin")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/api/usuarios/"+uuid.NewString(), adminToken, map[string]string{
		"nombre": "Nadie",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
