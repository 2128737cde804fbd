// Package server assembles the partner HTTP server: repositories,
// services, controllers, and the middleware stack.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/acacia-erp/acacia-sdk/modules/partner/infrastructure/persistence"
	"github.com/acacia-erp/acacia-sdk/modules/partner/presentation/controllers"
	"github.com/acacia-erp/acacia-sdk/modules/partner/services"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/configuration"
	"github.com/acacia-erp/acacia-sdk/pkg/eventbus"
	"github.com/acacia-erp/acacia-sdk/pkg/metrics"
	"github.com/acacia-erp/acacia-sdk/pkg/sms"
)

// Controller registers a set of routes on the shared router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

type Options struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Pool          *pgxpool.Pool
}

// Services is the fully wired service layer, shared between the HTTP
// server and the CLI commands.
type Services struct {
	Locations   *services.LocationService
	Territories *services.TerritoryService
	Partners    *services.PartnerService
	Profiles    *services.AgentProfileService
}

func BuildServices(cfg *configuration.Configuration, log *logrus.Logger) *Services {
	var gateway sms.Gateway
	if cfg.Sms.Enabled {
		gateway = sms.NewEskizGateway(sms.Config{
			BaseURL:  cfg.Sms.BaseURL,
			Email:    cfg.Sms.Email,
			Password: cfg.Sms.Password,
			From:     cfg.Sms.From,
		}, log)
	} else {
		gateway = sms.NewLogGateway(log)
	}

	bus := eventbus.NewEventPublisher(log)

	locationRepo := persistence.NewLocationRepository()
	territoryRepo := persistence.NewTerritoryRepository()
	partnerRepo := persistence.NewPartnerRepository()
	profileRepo := persistence.NewAgentProfileRepository()
	agentTypeRepo := persistence.NewAgentTypeRepository()
	accountRepo := persistence.NewAccountRepository()
	pinLogRepo := persistence.NewPinLogRepository()
	smsLogRepo := persistence.NewSmsMessageRepository()
	invoices := persistence.NewInvoiceRepository()

	return &Services{
		Locations:   services.NewLocationService(locationRepo, profileRepo, bus, log),
		Territories: services.NewTerritoryService(territoryRepo, bus, log),
		Partners: services.NewPartnerService(
			partnerRepo, agentTypeRepo, accountRepo, profileRepo, smsLogRepo,
			gateway, invoices, bus, log, cfg.Sms.From,
		),
		Profiles: services.NewAgentProfileService(
			profileRepo, partnerRepo, agentTypeRepo, pinLogRepo, smsLogRepo,
			gateway, bus, log, cfg.Sms.From,
		),
	}
}

func Default(options *Options) (*http.Server, error) {
	svcs := BuildServices(options.Configuration, options.Logger)

	r := mux.NewRouter()
	r.Use(
		withLogger(options.Logger),
		withPool(options.Pool),
	)

	if options.Configuration.Prometheus.Enabled {
		metrics.Register(r, options.Configuration.Prometheus.Path)
	}

	for _, c := range []Controller{
		controllers.NewLocationAPIController(svcs.Locations),
		controllers.NewTerritoryAPIController(svcs.Territories),
		controllers.NewPartnerAPIController(svcs.Partners),
		controllers.NewAgentProfileAPIController(svcs.Profiles),
	} {
		c.Register(r)
		options.Logger.WithField("routes", c.Key()).Debug("registered controller")
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)

	return &http.Server{
		Addr:              options.Configuration.SocketAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func withPool(pool *pgxpool.Pool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	}
}

func withLogger(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}
