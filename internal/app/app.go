package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Buggy1111/tlacenka/internal/config"
	"github.com/Buggy1111/tlacenka/internal/dal/postgres"
	"github.com/Buggy1111/tlacenka/internal/dal/rabbitmq"
	eventsrepo "github.com/Buggy1111/tlacenka/internal/dal/repositories/events/rabbitmq"
	outboxrepo "github.com/Buggy1111/tlacenka/internal/dal/repositories/outbox/postgres"
	"github.com/Buggy1111/tlacenka/internal/jaeger"
	"github.com/Buggy1111/tlacenka/internal/notifier"
	"github.com/Buggy1111/tlacenka/internal/service/services/authsvc"
	"github.com/Buggy1111/tlacenka/internal/service/services/ordersvc"
	"github.com/Buggy1111/tlacenka/internal/token"
	httptransport "github.com/Buggy1111/tlacenka/internal/transport/http"
	outboxworker "github.com/Buggy1111/tlacenka/internal/worker/outbox"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	authSvc        *authsvc.AuthService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	app := &App{}

	if viper.GetBool("tracing.enabled") {
		app.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(jaeger.MustNewJaeger()),
		)
		otel.SetTracerProvider(app.tracerProvider)
	}

	app.postgresClient = postgres.MustNewClient()

	telegram := notifier.NewTelegramNotifier()
	outboxRepo := outboxrepo.NewOutboxRepository(app.postgresClient)

	orderOpts := []ordersvc.Option{
		ordersvc.WithPostgresClient(app.postgresClient),
		ordersvc.WithNotifier(telegram),
		ordersvc.WithOutboxRepository(outboxRepo),
	}

	if viper.GetBool("rabbitmq.enabled") {
		rabbitClient, err := rabbitmq.NewClient()
		if err != nil {
			slog.Error("RabbitMQ unavailable, order events disabled", "error", err)
		} else {
			app.rabbitClient = rabbitClient

			publisher, err := eventsrepo.NewEventPublisher(rabbitClient)
			if err != nil {
				slog.Error("Failed to declare events queue, order events disabled", "error", err)
			} else {
				orderOpts = append(orderOpts, ordersvc.WithEventPublisher(publisher))
			}
		}
	}

	app.orderSvc = ordersvc.MustNewOrderService(orderOpts...)

	tokenSvc := token.NewService(config.JWTSecret(), token.DefaultTTL)
	app.authSvc = authsvc.MustNewAuthService(tokenSvc)

	app.transport = httptransport.NewHTTPTransport(app.orderSvc, app.authSvc)
	app.transport.RegisterRoutes()

	app.outboxWorker = outboxworker.NewWorker(outboxRepo, telegram)

	return app
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.orderSvc.WaitDispatch()
	cancelWorker()

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Tracer provider shutdown error", "error", err)
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	slog.Info("Application shutdown complete")
}
