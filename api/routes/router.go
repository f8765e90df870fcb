package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukahub/dukahub-backend/api/controllers"
	"github.com/dukahub/dukahub-backend/api/middleware"
	authsvc "github.com/dukahub/dukahub-backend/internal/auth"
	cartsvc "github.com/dukahub/dukahub-backend/internal/cart"
	catalogsvc "github.com/dukahub/dukahub-backend/internal/catalog"
	checkoutsvc "github.com/dukahub/dukahub-backend/internal/checkout"
	orderssvc "github.com/dukahub/dukahub-backend/internal/orders"
	userssvc "github.com/dukahub/dukahub-backend/internal/users"
	"github.com/dukahub/dukahub-backend/pkg/config"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	"github.com/dukahub/dukahub-backend/pkg/logger"
	"github.com/dukahub/dukahub-backend/pkg/metrics"
	"github.com/dukahub/dukahub-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   controllers.ReadinessChecks

	AuthService     authsvc.Service
	CartService     cartsvc.Service
	CatalogService  catalogsvc.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orderssvc.Service
	UsersService    userssvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Readiness, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.GuestSession())
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.Register(deps.AuthService, logg))
	})

	// Storefront browsing is open to everyone.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.CatalogService, logg))
	})
	r.Get("/api/v1/categories", controllers.ListCategories(deps.CatalogService, logg))

	// Carts serve guests via the session header and users via bearer tokens.
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(
			middleware.GuestSession(),
			middleware.OptionalAuth(cfg.JWT, logg),
		)
		r.Get("/", controllers.GetCart(deps.CartService, logg))
		r.Put("/", controllers.SetCartStatus(deps.CartService, logg))
		r.Delete("/", controllers.DeleteCart(deps.CartService, logg))
		r.Post("/items", controllers.AddCartItem(deps.CartService, logg))
		r.Put("/items/{productID}", controllers.UpdateCartItem(deps.CartService, logg))
		r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.CartService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(deps.Redis, logg),
		)

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Get("/quote", controllers.CheckoutQuote(deps.CheckoutService, logg))
			r.Post("/", controllers.Checkout(deps.CheckoutService, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(deps.OrdersService, logg))
			r.Get("/{orderID}", controllers.GetMyOrder(deps.OrdersService, logg))
		})

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.OrdersService, logg))
				r.Get("/{orderID}", controllers.AdminGetOrder(deps.OrdersService, logg))
				r.Post("/{orderID}/status", controllers.AdminTransitionOrder(deps.OrdersService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateProduct(deps.CatalogService, logg))
				r.Put("/{productID}", controllers.AdminUpdateProduct(deps.CatalogService, logg))
				r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.CatalogService, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateCategory(deps.CatalogService, logg))
				r.Put("/{categoryID}", controllers.AdminUpdateCategory(deps.CatalogService, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/{userID}", controllers.AdminGetUser(deps.UsersService, logg))
				r.Put("/{userID}/active", controllers.AdminSetUserActive(deps.UsersService, logg))
			})
		})
	})

	return r
}
