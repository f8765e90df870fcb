package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/dukahub/dukahub-backend/internal/auth"
	cartsvc "github.com/dukahub/dukahub-backend/internal/cart"
	catalogsvc "github.com/dukahub/dukahub-backend/internal/catalog"
	checkoutsvc "github.com/dukahub/dukahub-backend/internal/checkout"
	orderssvc "github.com/dukahub/dukahub-backend/internal/orders"
	userssvc "github.com/dukahub/dukahub-backend/internal/users"
	pkgauth "github.com/dukahub/dukahub-backend/pkg/auth"
	"github.com/dukahub/dukahub-backend/pkg/config"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	"github.com/dukahub/dukahub-backend/pkg/logger"
	"github.com/dukahub/dukahub-backend/pkg/outbox"
	"github.com/dukahub/dukahub-backend/pkg/pagination"
)

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, authsvc.RegisterInput) (*userssvc.UserDTO, error) {
	return &userssvc.UserDTO{}, nil
}

func (stubAuthService) Login(context.Context, authsvc.LoginInput) (*authsvc.Session, error) {
	return &authsvc.Session{}, nil
}

type stubCartService struct{}

func (stubCartService) GetOrCreateOpenCart(context.Context, cartsvc.Owner) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) AddItem(context.Context, cartsvc.Owner, uuid.UUID, int) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) UpdateItemQuantity(context.Context, cartsvc.Owner, uuid.UUID, int) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) RemoveItem(context.Context, cartsvc.Owner, uuid.UUID) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) SetStatus(context.Context, cartsvc.Owner, enums.CartStatus) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) DeleteCart(context.Context, cartsvc.Owner) error {
	return nil
}

func (stubCartService) MergeGuestCart(context.Context, string, uuid.UUID) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(context.Context, pagination.Params, catalogsvc.ProductFilters) (*catalogsvc.ProductList, error) {
	return &catalogsvc.ProductList{}, nil
}

func (stubCatalogService) GetProduct(context.Context, uuid.UUID) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}

func (stubCatalogService) CreateProduct(context.Context, catalogsvc.ProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}

func (stubCatalogService) UpdateProduct(context.Context, uuid.UUID, catalogsvc.ProductInput) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{}, nil
}

func (stubCatalogService) DeleteProduct(context.Context, uuid.UUID) error {
	return nil
}

func (stubCatalogService) ListCategories(context.Context) ([]catalogsvc.CategoryDTO, error) {
	return nil, nil
}

func (stubCatalogService) CreateCategory(context.Context, catalogsvc.CategoryInput) (*catalogsvc.CategoryDTO, error) {
	return &catalogsvc.CategoryDTO{}, nil
}

func (stubCatalogService) UpdateCategory(context.Context, uuid.UUID, catalogsvc.CategoryInput) (*catalogsvc.CategoryDTO, error) {
	return &catalogsvc.CategoryDTO{}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Quote(context.Context, uuid.UUID) (*checkoutsvc.QuoteDTO, error) {
	return &checkoutsvc.QuoteDTO{}, nil
}

func (stubCheckoutService) ProcessCheckout(context.Context, uuid.UUID, enums.PaymentMethod) (*checkoutsvc.Result, error) {
	return &checkoutsvc.Result{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) ListUserOrders(context.Context, uuid.UUID, pagination.Params) (*orderssvc.OrderList, error) {
	return &orderssvc.OrderList{}, nil
}

func (stubOrdersService) ListAllOrders(context.Context, pagination.Params) (*orderssvc.OrderList, error) {
	return &orderssvc.OrderList{}, nil
}

func (stubOrdersService) GetUserOrder(context.Context, uuid.UUID, uuid.UUID) (*orderssvc.OrderDTO, error) {
	return &orderssvc.OrderDTO{}, nil
}

func (stubOrdersService) GetOrder(context.Context, uuid.UUID) (*orderssvc.OrderDTO, error) {
	return &orderssvc.OrderDTO{}, nil
}

func (stubOrdersService) Transition(context.Context, uuid.UUID, enums.OrderStatus, *outbox.ActorRef) (*orderssvc.OrderDTO, error) {
	return &orderssvc.OrderDTO{}, nil
}

type stubUsersService struct{}

func (stubUsersService) GetUser(context.Context, uuid.UUID) (*userssvc.UserDTO, error) {
	return &userssvc.UserDTO{}, nil
}

func (stubUsersService) SetActive(context.Context, uuid.UUID, bool) (*userssvc.UserDTO, error) {
	return &userssvc.UserDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		AuthService:     stubAuthService{},
		CartService:     stubCartService{},
		CatalogService:  stubCatalogService{},
		CheckoutService: stubCheckoutService{},
		OrdersService:   stubOrdersService{},
		UsersService:    stubUsersService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProductsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRequireJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartServesGuestsWithSessionHeader(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", "guest-session")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for guest cart got %d", resp.Code)
	}
}

func TestCartWithoutIdentityFails(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session or token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCheckoutQuoteRequiresJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}
