package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koweyli/vantage-console/internal/api/handlers"
	"github.com/koweyli/vantage-console/internal/api/middleware"
	"github.com/koweyli/vantage-console/internal/config"
	"github.com/koweyli/vantage-console/internal/metrics"
	"github.com/koweyli/vantage-console/internal/services"
	"github.com/koweyli/vantage-console/internal/store"
)

// Deps bundles the stores shared by every handler so tests can register the
// full route table against in-memory state.
type Deps struct {
	Users *store.UserStore
	Perms *store.PermissionStore
	Audit *store.AuditStore
	Cfg   config.Config
}

// Register wires up the API routes, services and the metrics endpoint. It
// returns the data center service so the caller can schedule telemetry
// refreshes.
func Register(router *gin.Engine, deps Deps) *services.DataCenterService {
	geoService := services.NewGeoService(deps.Cfg.GeoAPIBase, deps.Cfg.GeoTimeout)
	auditService := services.NewAuditService(deps.Audit, geoService, deps.Cfg.DownloadsDir)
	alertService := services.NewAlertService(deps.Cfg.AlertURLs)
	authService := services.NewAuthService(deps.Users, deps.Perms, auditService, alertService,
		deps.Cfg.JWTSecret, deps.Cfg.TokenTTL)
	dataCenterService := services.NewDataCenterService()

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")

	authHandler := handlers.NewAuthHandler(authService)
	api.POST("/login", authHandler.Login)
	api.POST("/register", authHandler.Register)

	handlers.NewHealthHandler().RegisterRoutes(api)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		handlers.NewUserHandler(deps.Users, deps.Perms, auditService, alertService).RegisterRoutes(protected)
		handlers.NewPermissionHandler(deps.Users, deps.Perms, auditService).RegisterRoutes(protected)
		handlers.NewProfileHandler(deps.Users, auditService, deps.Cfg.UploadsDir).RegisterRoutes(protected)
		handlers.NewAuditHandler(auditService).RegisterRoutes(protected)
		handlers.NewDataCenterHandler(dataCenterService).RegisterRoutes(protected)
	}

	return dataCenterService
}
