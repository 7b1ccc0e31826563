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

// ConsumeLeaveStatusChanged turns leave transition events into emails to the
// affected employee. Lookup failures commit the message anyway: a deleted
// employee should not wedge the partition.
func ConsumeLeaveStatusChanged(
	ctx context.Context,
	reader *kafkago.Reader,
	employeeRepo employee.Repository,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_status")
	log.Info("leave status consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave status consumer stopped")
				return
			}
			log.Error("fetch leave status message failed", zap.Error(err))
			continue
		}

		var event events.LeaveStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave status event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		emp, err := employeeRepo.FindByIDAndCompany(ctx, event.CompanyID, event.EmployeeID)
		if err != nil {
			log.Warn("employee lookup for notification failed, skipping",
				zap.String("employee_id", event.EmployeeID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject := fmt.Sprintf("Your %s request is now %s", event.LeaveType, event.Status)
		body := fmt.Sprintf(
			"Hi %s,\n\nYour %s request (%s) has been %s.\n\nNestHR",
			emp.FullName, event.LeaveType, event.RequestID, event.Status,
		)
		if err := mailer.Send(emp.Email, subject, body); err != nil {
			log.Error("send leave status notification failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave status message failed", zap.Error(err))
			continue
		}

		log.Info("leave status notification delivered",
			zap.String("request_id", event.RequestID),
			zap.String("employee_id", event.EmployeeID),
			zap.String("status", event.Status),
		)
	}
}
