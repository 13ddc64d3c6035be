// Package managers wires configured controller backends to the visibility
// engine and runs their lifecycles.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/crescentwatch/internal/archive"
	"github.com/chrissnell/crescentwatch/internal/controllers/restserver"
	"github.com/chrissnell/crescentwatch/internal/controllers/telegram"
	"github.com/chrissnell/crescentwatch/internal/observability"
	"github.com/chrissnell/crescentwatch/pkg/config"
	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// Deps carries the shared backends handed to each controller.
type Deps struct {
	Engine  *crescent.Engine
	Store   archive.Store
	Metrics *observability.EngineCollector
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deps Deps, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		deps:           deps,
		logger:         logger,
		controllers:    make([]Controller, 0),
	}

	controllerConfigs, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("error loading controller configurations: %v", err)
	}

	for _, cc := range controllerConfigs {
		controller, err := cm.createController(cc)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	deps           Deps
	logger         *zap.SugaredLogger
	controllers    []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *controllerManager) createController(cc config.ControllerData) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		if cc.RESTServer == nil {
			return nil, fmt.Errorf("rest controller has no rest configuration block")
		}
		return restserver.NewController(cm.ctx, cm.wg, cm.configProvider, *cc.RESTServer, cm.deps.Engine, cm.deps.Store, cm.deps.Metrics, cm.logger)
	case "telegram":
		if cc.Telegram == nil {
			return nil, fmt.Errorf("telegram controller has no telegram configuration block")
		}
		return telegram.NewController(cm.ctx, cm.wg, cm.configProvider, *cc.Telegram, cm.deps.Engine, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
