package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LabelNest/NestHR/internal/employee"
	"github.com/LabelNest/NestHR/internal/events"
	"github.com/LabelNest/NestHR/internal/notification"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeEmployeeLifecycle sends the onboarding welcome email after an
// employee record lands.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	employeeRepo employee.Repository,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee_created event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		emp, err := employeeRepo.FindByIDAndCompany(ctx, event.CompanyID, event.EmployeeID)
		if err != nil {
			log.Warn("employee lookup for welcome email failed, skipping",
				zap.String("employee_id", event.EmployeeID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject := "Welcome to NestHR"
		body := fmt.Sprintf(
			"Hi %s,\n\nYour employee record (%s) has been created and your leave balances for the year are ready.\n\nNestHR",
			emp.FullName, emp.EmployeeNumber,
		)
		if err := mailer.Send(emp.Email, subject, body); err != nil {
			log.Error("send welcome email failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("welcome email delivered",
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
		)
	}
}
