package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	internalaws "github.com/arsyilla/qris-relay/internal/aws"
	"github.com/arsyilla/qris-relay/internal/config"
	eventspkg "github.com/arsyilla/qris-relay/internal/events"
	"github.com/arsyilla/qris-relay/internal/handlers"
	"github.com/arsyilla/qris-relay/internal/metrics"
	"github.com/arsyilla/qris-relay/internal/pakasir"
	"github.com/arsyilla/qris-relay/internal/payments"
	"github.com/arsyilla/qris-relay/internal/relay"
	"github.com/arsyilla/qris-relay/internal/transactions"
)

func setupRouter(svc *payments.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterPaymentRoutes(r, svc)
	handlers.RegisterStaticPages(r)
	handlers.RegisterFallbacks(r)

	return r
}

func main() {
	cfg := config.Load()

	clients, err := internalaws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := transactions.NewStore(clients.DynamoDB, cfg.TransactionsTable)
	provider := pakasir.NewClient(cfg.PakasirBaseURL, cfg.PakasirProject, cfg.PakasirAPIKey,
		&http.Client{Timeout: cfg.ProviderTimeout})
	notifier := relay.NewNotifier(&http.Client{Timeout: cfg.RelayTimeout}, "qris-relay", cfg.SelfWebhookURL)

	svcCfg := payments.Config{
		Provider:       provider,
		Store:          store,
		Relay:          notifier,
		SelfWebhookURL: cfg.SelfWebhookURL,
	}
	if cfg.EventsQueueURL != "" {
		svcCfg.Events = eventspkg.NewPublisher(clients.SQS, cfg.EventsQueueURL)
	}
	if cfg.MetricsNamespace != "" {
		svcCfg.Metrics = metrics.NewRecorder(clients.CloudWatch, cfg.MetricsNamespace)
	}

	r := setupRouter(payments.NewService(svcCfg))

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
