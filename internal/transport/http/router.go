package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-shop-api/internal/config"
	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/transport/http/handler"
	appmiddleware "github.com/go-shop-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background helpers such as the rate limiter's cleanup loop.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps, svcs *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	adminOnly := appmiddleware.Auth(deps.JWTProvider, domain.PrincipalAdmin)
	customerOnly := appmiddleware.Auth(deps.JWTProvider, domain.PrincipalCustomer)
	anyPrincipal := appmiddleware.Auth(deps.JWTProvider, domain.PrincipalCustomer, domain.PrincipalAdmin)
	optionalCustomer := appmiddleware.OptionalAuth(deps.JWTProvider, domain.PrincipalCustomer)

	// Applied to the public credential and OTP endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst, cfg.TrustedProxies)

	authH := handler.NewAuthHandler(svcs.Auth, handler.CookieConfig{
		MaxAge: cfg.JWT.CookieMaxAge,
		Secure: cfg.IsProduction(),
	})
	productH := handler.NewProductHandler(svcs.Products, handler.UploadLimits{
		MaxFileBytes: cfg.MaxUploadBytes,
		MaxFiles:     cfg.MaxUploadFiles,
	})
	detailH := handler.NewProductDetailHandler(svcs.Details)
	ratingH := handler.NewRatingHandler(svcs.Ratings)
	orderH := handler.NewOrderHandler(svcs.Orders)
	wishlistH := handler.NewWishlistHandler(svcs.Wishlist)
	var db handler.Pinger
	if deps.Store != nil {
		db = deps.Store
	}
	healthH := handler.NewHealthHandler(db)

	r.Get("/health", healthH.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(adminOnly, appmiddleware.RequireCreator).Post("/signup-admin", authH.SignUpAdmin)
		r.With(sensitiveRL.Limit).Post("/signin-admin", authH.SignInAdmin)
		r.Post("/signout-admin", authH.SignOutAdmin)
		r.Post("/refresh-admin", authH.RefreshAdmin)

		r.With(sensitiveRL.Limit).Post("/signup-customer", authH.SignUpCustomer)
		r.With(sensitiveRL.Limit).Post("/newotp", authH.NewOTP)
		r.With(sensitiveRL.Limit).Post("/verifyotp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/signin-customer", authH.SignInCustomer)
		r.Post("/signout-customer", authH.SignOutCustomer)
		r.Post("/refresh-customer", authH.RefreshCustomer)
		r.Get("/check-token", authH.CheckToken)
	})

	r.Route("/products", func(r chi.Router) {
		r.With(optionalCustomer).Get("/", productH.List)
		r.Get("/{id}", productH.Get)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", productH.Create)
			r.Patch("/{id}", productH.Update)
			r.Delete("/{id}", productH.Delete)
		})
	})

	r.Route("/product-details", func(r chi.Router) {
		r.Get("/", detailH.List)
		r.Get("/{id}", detailH.Get)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", detailH.Create)
			r.Patch("/{id}", detailH.Update)
			r.Delete("/{id}", detailH.Delete)
		})
	})

	r.Route("/product-rating", func(r chi.Router) {
		r.Get("/", ratingH.List)
		r.Get("/{id}", ratingH.Get)
		r.With(customerOnly, appmiddleware.RequireActive).Post("/", ratingH.Create)
		r.With(anyPrincipal).Patch("/{id}", ratingH.Update)
		r.With(anyPrincipal).Delete("/{id}", ratingH.Delete)
	})

	r.Route("/order", func(r chi.Router) {
		r.With(customerOnly, appmiddleware.RequireActive).Post("/create", orderH.Create)
		r.With(anyPrincipal).Get("/get/{id}", orderH.Get)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/get", orderH.List)
			r.Patch("/update/{id}", orderH.UpdateStatus)
			r.Delete("/delete/{id}", orderH.Delete)
		})
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Use(customerOnly)
		r.Post("/toggle", wishlistH.Toggle)
		r.Get("/get", wishlistH.List)
	})

	return r
}
