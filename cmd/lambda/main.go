package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/AlotfyDev/ArchiNote/infrastructure/config"
	"github.com/AlotfyDev/ArchiNote/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container
	coldStart = true
)

// init runs during cold start. The graph is restored from the snapshot store
// so that every execution environment starts from the last saved state.
func init() {
	start := time.Now()
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The execution environment is frozen, not shut down, so cleanup never runs
	container, _, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler, err := container.HTTPHandler()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	// A failed init is retried by Lambda on the next invocation
	if err := container.RestoreGraph(ctx); err != nil {
		log.Fatalf("Failed to restore graph: %v", err)
	}

	container.Logger.Info("Lambda cold start completed", zap.Duration("duration", time.Since(start)))
}

// Handler is the Lambda function handler. Successful mutations are saved
// before returning since the environment may be reclaimed at any time.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := container.Logger.With(
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Bool("cold_start", coldStart),
	)
	coldStart = false

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if err != nil {
		logger.Error("Failed to proxy request", zap.Error(err))
		return resp, err
	}

	if isMutation(req.RequestContext.HTTP.Method) && resp.StatusCode < http.StatusMultipleChoices {
		if err := container.Service.Save(ctx, container.Config.GraphID); err != nil {
			logger.Error("Failed to save graph after mutation", zap.Error(err))
		}
	}

	logger.Debug("Lambda request handled",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func main() {
	lambda.Start(Handler)
}
