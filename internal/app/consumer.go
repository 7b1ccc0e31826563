package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LabelNest/NestHR/internal/employee"
	"github.com/LabelNest/NestHR/internal/events"
	"github.com/LabelNest/NestHR/internal/messaging/kafka/consumer"
	"github.com/LabelNest/NestHR/internal/notification"
	"github.com/LabelNest/NestHR/internal/shared/connection"
	"go.uber.org/zap"
)

// RunConsumer delivers notification emails for leave transitions and new
// employees until interrupted.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	employeeRepo := employee.NewRepository(gormDB)
	mailer := notification.NewMailer(logger)

	leaveStatusReader := connection.NewKafkaReader(kafkaBroker, events.LeaveStatusChangedTopic, "nesthr-leave-notifications")
	defer leaveStatusReader.Close()

	lifecycleReader := connection.NewKafkaReader(kafkaBroker, events.EmployeeCreatedTopic, "nesthr-employee-welcome")
	defer lifecycleReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveStatusChanged(ctx, leaveStatusReader, employeeRepo, mailer, logger)
	go consumer.ConsumeEmployeeLifecycle(ctx, lifecycleReader, employeeRepo, mailer, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
