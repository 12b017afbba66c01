package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"example.com/marketplace/internal/events"
	"example.com/marketplace/internal/handlers"
	"example.com/marketplace/internal/metrics"
	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/service"
	"example.com/marketplace/internal/storage"
)

// Deps are the collaborators NewRouter wires into the handlers.
type Deps struct {
	DB       *gorm.DB
	Metrics  *metrics.Metrics
	Notifier *service.Notifier
}

func NewServer(cfg Config) (*gin.Engine, func(), error) {
	// --- DB ---
	db, err := storage.Open(cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(db); err != nil {
		storage.Close(db)
		return nil, nil, err
	}
	if err := storage.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		storage.Close(db)
		return nil, nil, err
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	email := service.NewEmailService(service.SMTPConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom})
	notifier := service.NewNotifier(pub, email)
	r := NewRouter(cfg, Deps{
		DB:       db,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Notifier: notifier,
	})

	cleanup := func() {
		// drain in-flight notifications before the writer goes away
		notifier.Wait()
		_ = pub.Close()
		storage.Close(db)
	}
	return r, cleanup, nil
}

func NewRouter(cfg Config, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), handlers.RequestID())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	// --- services ---
	auth := service.NewAuthService(d.DB, service.AuthConfig{
		Secret:                 []byte(cfg.JWTSecret),
		TokenTTL:               cfg.TokenTTL,
		AllowAdminRegistration: cfg.AllowAdminRegistration,
	})
	users := service.NewUserService(d.DB)
	orders := service.NewOrderService(d.DB)

	authH := handlers.NewAuthHTTP(auth, users, cfg.TokenTTL, cfg.IsProd())
	catalogH := &handlers.Catalog{S: service.NewCatalogService(d.DB)}
	cartH := &handlers.Cart{S: service.NewCartService(d.DB)}
	ordersH := &handlers.Orders{
		Checkout: service.NewCheckoutService(d.DB, d.Notifier),
		Orders:   orders,
		Metrics:  d.Metrics,
	}
	sellerH := &handlers.Seller{
		Orders:      orders,
		Fulfillment: service.NewFulfillmentService(d.DB, d.Notifier),
		Metrics:     d.Metrics,
	}
	adminH := &handlers.Admin{
		Seed:   func() (model.User, error) { return storage.SeedDemo(d.DB) },
		Orders: orders,
		Users:  users,
	}

	// --- public ---
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api", handlers.NoStore())
	api.GET("/products", catalogH.List)
	api.GET("/products/:id", catalogH.Get)

	authG := api.Group("/auth")
	authG.POST("/register", authH.Register)
	authG.POST("/login", authH.Login)
	authG.POST("/logout", authH.Logout)

	// --- authenticated ---
	authMW := handlers.RequireAuth(auth)
	authG.GET("/me", authMW, authH.Me)

	cart := api.Group("/cart", authMW)
	cart.GET("", cartH.Get)
	cart.DELETE("", cartH.Clear)
	cart.POST("/items", cartH.Add)
	cart.PUT("/items/:id", cartH.Update)
	cart.DELETE("/items/:id", cartH.Remove)

	ord := api.Group("/orders", authMW)
	ord.POST("/checkout", ordersH.PlaceOrder)
	ord.GET("", ordersH.List)
	ord.GET("/:id", ordersH.Get)

	seller := api.Group("/seller", authMW, handlers.RequireRole(model.RoleSeller))
	seller.GET("/orders", sellerH.ListItems)
	seller.GET("/orders/items/:itemId", sellerH.GetItem)
	seller.PUT("/orders/items/:itemId/status", sellerH.UpdateStatus)

	admin := api.Group("/admin", authMW, handlers.RequireRole(model.RoleAdmin))
	admin.POST("/seed", adminH.SeedDemo)
	admin.DELETE("/orders/:id", adminH.DeleteOrder)
	admin.DELETE("/users/:id", adminH.DeleteUser)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
