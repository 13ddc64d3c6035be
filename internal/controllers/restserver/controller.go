// Package restserver serves the crescent visibility API over HTTP: the
// NDJSON grid stream, the sunset simulation, conjunction lookups, and the
// archived-run listing.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/chrissnell/crescentwatch/internal/archive"
	"github.com/chrissnell/crescentwatch/internal/log"
	"github.com/chrissnell/crescentwatch/internal/observability"
	"github.com/chrissnell/crescentwatch/pkg/config"
	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	restConfig     config.RESTServerData
	engineDefaults config.EngineData
	Server         http.Server
	engine         *crescent.Engine
	store          archive.Store
	metrics        *observability.EngineCollector
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller. The archive store and
// metrics collector may be nil; the matching endpoints degrade gracefully.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTServerData, engine *crescent.Engine, store archive.Store, metrics *observability.EngineCollector, logger *zap.SugaredLogger) (*Controller, error) {
	if engine == nil {
		return nil, fmt.Errorf("REST server requires a visibility engine")
	}

	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		restConfig:     rc,
		engine:         engine,
		store:          store,
		metrics:        metrics,
		logger:         logger,
	}

	engineCfg, err := configProvider.GetEngineConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading engine configuration: %v", err)
	}
	ctrl.engineDefaults = *engineCfg

	// If a listen address was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/visibility", c.handlers.GetVisibility)
	router.HandleFunc("/api/simulation", c.handlers.GetSimulation)
	router.HandleFunc("/api/conjunction", c.handlers.GetConjunction)

	// Archived runs are only routable when an archive backend is configured
	if c.store != nil {
		router.HandleFunc("/api/runs", c.handlers.ListRuns)
		router.HandleFunc("/api/runs/{id}", c.handlers.GetRun)
	}

	if c.metrics != nil {
		router.Handle("/metrics", c.metrics.Handler())
	}

	router.HandleFunc("/health", c.handlers.GetHealth)

	return router
}
