package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/microshop/orders-service/internal/app"
	"github.com/microshop/orders-service/internal/bus"
	"github.com/microshop/orders-service/internal/catalog"
	"github.com/microshop/orders-service/internal/config"
	"github.com/microshop/orders-service/internal/handler"
	"github.com/microshop/orders-service/internal/payments"
	"github.com/microshop/orders-service/internal/postgres"
	"github.com/microshop/orders-service/internal/repo"
	"github.com/microshop/orders-service/internal/service"
	"github.com/microshop/orders-service/pkg/trm"

	"github.com/joho/godotenv"
)

// @title           Orders Service API
// @version         1.0
// @description     Order lifecycle HTTP API
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	busClient := bus.New(logger, conf.Bus, conf.Kafka)
	catalogClient := catalog.New(logger, busClient, conf.Bus.ValidateProductsTopic)
	paymentsClient := payments.New(logger, busClient, conf.Bus.PaymentSessionTopic, conf.Payments.Currency)

	orderService := service.NewOrderService(logger, txManager, orderRepo, catalogClient, paymentsClient)

	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, orderService)
	httpHandler := handler.NewHTTPHandler(logger, orderService)
	handler.RegisterMetrics()

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler)
	app.SetConsumers(busClient, kafkaHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("application failed", app.Run(ctx))
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
