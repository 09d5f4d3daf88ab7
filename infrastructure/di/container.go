// Package di wires the application's dependencies with google/wire.
package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AlotfyDev/ArchiNote/application/ports"
	"github.com/AlotfyDev/ArchiNote/application/services"
	domainconfig "github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/infrastructure/config"
	"github.com/AlotfyDev/ArchiNote/infrastructure/observability"
	"github.com/AlotfyDev/ArchiNote/interfaces/http/rest"
	"github.com/AlotfyDev/ArchiNote/interfaces/http/rest/middleware"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	LogLevel     zap.AtomicLevel
	Orchestrator *aggregates.Orchestrator
	Store        ports.SnapshotStore
	Publisher    ports.EventPublisher
	Metrics      *observability.Collector
	Tracing      *observability.TracerProvider
	Service      *services.KnowledgeGraphService
}

// HTTPHandler builds the REST router shared by the server and Lambda entry points
func (c *Container) HTTPHandler() (http.Handler, error) {
	opts := rest.Options{
		GraphID:        c.Config.GraphID,
		Debug:          c.Config.IsDevelopment(),
		AllowedOrigins: c.Config.AllowedOrigins,
	}
	if c.Config.AuthEnabled {
		validator, err := middleware.NewTokenValidator(c.Config.JWTSecret, c.Config.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create token validator: %w", err)
		}
		opts.Auth = validator
	}
	return rest.NewRouter(c.Service, c.Metrics, opts, c.Logger).Setup(), nil
}

// RestoreGraph loads the configured graph. Only a graph that was never saved
// starts empty; any other failure is returned so the caller does not later
// save an empty graph over the stored one.
func (c *Container) RestoreGraph(ctx context.Context) error {
	err := c.Service.Load(ctx, c.Config.GraphID)
	switch {
	case err == nil:
		c.Logger.Info("Graph restored", zap.String("graph_id", c.Config.GraphID))
		return nil
	case pkgerrors.HasCode(err, pkgerrors.CodeGraphNotFound):
		c.Logger.Info("Starting with an empty graph", zap.String("graph_id", c.Config.GraphID))
		return nil
	default:
		return fmt.Errorf("failed to restore graph %s: %w", c.Config.GraphID, err)
	}
}
