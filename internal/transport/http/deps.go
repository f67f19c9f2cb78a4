package http

import (
	"github.com/sirupsen/logrus"

	"github.com/go-shop-api/internal/application/auth"
	"github.com/go-shop-api/internal/application/order"
	"github.com/go-shop-api/internal/application/otp"
	"github.com/go-shop-api/internal/application/product"
	"github.com/go-shop-api/internal/application/productdetail"
	"github.com/go-shop-api/internal/application/rating"
	"github.com/go-shop-api/internal/application/wishlist"
	"github.com/go-shop-api/internal/config"
	"github.com/go-shop-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
	"github.com/go-shop-api/internal/infrastructure/postgres"
	s3infra "github.com/go-shop-api/internal/infrastructure/s3"
	"github.com/go-shop-api/internal/infrastructure/smtp"
	"github.com/go-shop-api/internal/infrastructure/sns"
	"github.com/go-shop-api/internal/observability/metrics"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AdminRepo    *dynamo.AdminRepo
	CustomerRepo *dynamo.CustomerRepo
	OTPRepo      *dynamo.OTPRepo
	Store        *postgres.Store
	ProductRepo  *postgres.ProductRepo
	DetailRepo   *postgres.ProductDetailRepo
	RatingRepo   *postgres.RatingRepo
	OrderRepo    *postgres.OrderRepo
	WishlistRepo *postgres.WishlistRepo
	S3Store      *s3infra.Store
	Mailer       smtp.Mailer
	SMSSender    sns.SMSSender // nil disables order texts
	JWTProvider  *jwtinfra.Provider
	Metrics      *metrics.Metrics
	Logger       logrus.FieldLogger
}

// Services are the application services the handlers call.
type Services struct {
	Auth     auth.Service
	Products product.Service
	Details  productdetail.Service
	Ratings  rating.Service
	Orders   order.Service
	Wishlist wishlist.Service
}

// NewServices wires the application layer from deps.
func NewServices(cfg *config.Config, deps *Deps) *Services {
	var recorder otp.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	otpSvc := otp.NewService(otp.ServiceDeps{
		Codes:     deps.OTPRepo,
		Customers: deps.CustomerRepo,
		Mailer:    deps.Mailer,
		Config: otp.Config{
			Length:      cfg.OTP.Length,
			TTL:         cfg.OTP.TTL,
			MaxAttempts: cfg.OTP.MaxAttempts,
		},
		Metrics: recorder,
		Logger:  deps.Logger.WithField("component", "otp"),
	})
	return &Services{
		Auth: auth.NewService(auth.ServiceDeps{
			Admins:    deps.AdminRepo,
			Customers: deps.CustomerRepo,
			OTP:       otpSvc,
			Tokens:    deps.JWTProvider,
			Mailer:    deps.Mailer,
			Logger:    deps.Logger.WithField("component", "auth"),
		}),
		Products: product.NewService(product.ServiceDeps{
			Products:      deps.ProductRepo,
			Wishlist:      deps.WishlistRepo,
			Images:        deps.S3Store,
			MaxImageBytes: cfg.MaxUploadBytes,
			MaxImages:     cfg.MaxUploadFiles,
			Logger:        deps.Logger.WithField("component", "product"),
		}),
		Details: productdetail.NewService(productdetail.ServiceDeps{
			Details:  deps.DetailRepo,
			Products: deps.ProductRepo,
			Tx:       deps.Store,
		}),
		Ratings: rating.NewService(rating.ServiceDeps{
			Ratings:  deps.RatingRepo,
			Products: deps.ProductRepo,
			Tx:       deps.Store,
		}),
		Orders: order.NewService(order.ServiceDeps{
			Orders:   deps.OrderRepo,
			Products: deps.ProductRepo,
			Tx:       deps.Store,
			SMS:      deps.SMSSender,
			Brand:    cfg.BrandName,
			Logger:   deps.Logger.WithField("component", "order"),
		}),
		Wishlist: wishlist.NewService(wishlist.ServiceDeps{
			Wishlist: deps.WishlistRepo,
			Products: deps.ProductRepo,
			Tx:       deps.Store,
		}),
	}
}
