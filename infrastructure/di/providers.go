package di

import (
	"context"
	"fmt"

	"github.com/AlotfyDev/ArchiNote/application/ports"
	"github.com/AlotfyDev/ArchiNote/application/services"
	domainconfig "github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/infrastructure/config"
	"github.com/AlotfyDev/ArchiNote/infrastructure/messaging/eventbridge"
	"github.com/AlotfyDev/ArchiNote/infrastructure/messaging/logpublisher"
	"github.com/AlotfyDev/ArchiNote/infrastructure/observability"
	"github.com/AlotfyDev/ArchiNote/infrastructure/persistence/badger"
	"github.com/AlotfyDev/ArchiNote/infrastructure/persistence/dynamodb"
	"github.com/AlotfyDev/ArchiNote/infrastructure/persistence/memory"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ServiceName identifies the service in traces and metrics
const ServiceName = "archinote"

// ProvideLogLevel parses LOG_LEVEL into a level that can be changed at runtime
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	return level, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideDomainConfig loads the graph limits and compatibility rules
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	return config.LoadDomainConfigFile(cfg.DomainConfigPath, cfg.Environment)
}

// ProvideOrchestrator creates the graph aggregate
func ProvideOrchestrator(domainCfg *domainconfig.DomainConfig, logger *zap.Logger) *aggregates.Orchestrator {
	return aggregates.NewOrchestrator(domainCfg, logger)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(ServiceName)
}

// ProvideMetricsRecorder exposes the collector to the service layer
func ProvideMetricsRecorder(collector *observability.Collector) ports.MetricsRecorder {
	return collector
}

// ProvideSnapshotStore opens the configured backend. The cleanup closes it.
func ProvideSnapshotStore(
	cfg *config.Config,
	awsCfg aws.Config,
	collector *observability.Collector,
	logger *zap.Logger,
) (ports.SnapshotStore, func(), error) {
	var (
		store   ports.SnapshotStore
		cleanup = func() {}
	)

	switch cfg.StoreBackend {
	case config.StoreMemory:
		store = memory.NewSnapshotStore()
	case config.StoreBadger:
		badgerCfg := badger.DefaultConfig(cfg.BadgerPath)
		if cfg.BadgerInMemory {
			badgerCfg = badger.InMemoryConfig()
		}
		db, err := badger.Open(badgerCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		store = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close badger store", zap.Error(err))
			}
		}
	case config.StoreDynamoDB:
		store = dynamodb.NewSnapshotStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	logger.Info("Snapshot store ready", zap.String("backend", cfg.StoreBackend))
	return observability.NewInstrumentedStore(store, cfg.StoreBackend, collector), cleanup, nil
}

// ProvideEventPublisher logs every event and forwards to EventBridge when a bus is configured
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.EventPublisher {
	var next ports.EventPublisher
	if cfg.EventBusName != "" {
		next = eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, cfg.GraphID, logger)
	}
	return logpublisher.NewPublisher(logger, next)
}

// ProvideTracerProvider starts tracing; the cleanup flushes pending spans
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideTracer returns the service tracer
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ProvideKnowledgeGraphService creates the application facade
func ProvideKnowledgeGraphService(
	orch *aggregates.Orchestrator,
	store ports.SnapshotStore,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) *services.KnowledgeGraphService {
	return services.NewKnowledgeGraphService(orch, store, publisher, metrics, tracer, logger)
}
