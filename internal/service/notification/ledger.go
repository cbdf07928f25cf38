package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/notification"
)

type ledgerNotifier struct {
	svc notification.Service
}

// NewLedgerNotifier turns consolidation lifecycle events into employee notifications.
func NewLedgerNotifier(svc notification.Service) consolidation.Notifier {
	return &ledgerNotifier{svc: svc}
}

func (n *ledgerNotifier) OnValidated(ctx context.Context, c consolidation.Consolidation) {
	n.queue(ctx, c, notification.TypeConsolidationValidated,
		"Payroll validated",
		fmt.Sprintf("Your payroll consolidation for %s has been validated.", c.YearMonth),
		nil,
	)
}

func (n *ledgerNotifier) OnCorrected(ctx context.Context, c consolidation.Consolidation, field, comment string) {
	n.queue(ctx, c, notification.TypeConsolidationCorrected,
		"Payroll corrected",
		fmt.Sprintf("Your payroll consolidation for %s was corrected: %s.", c.YearMonth, comment),
		map[string]interface{}{"field": field, "comment": comment},
	)
}

func (n *ledgerNotifier) OnReopened(ctx context.Context, c consolidation.Consolidation, reason string) {
	n.queue(ctx, c, notification.TypeConsolidationReopened,
		"Payroll reopened",
		fmt.Sprintf("Your payroll consolidation for %s was reopened: %s.", c.YearMonth, reason),
		map[string]interface{}{"reason": reason},
	)
}

func (n *ledgerNotifier) queue(ctx context.Context, c consolidation.Consolidation, typ notification.NotificationType, title, message string, extra map[string]interface{}) {
	data := map[string]interface{}{
		"consolidation_id": c.ID,
		"year_month":       c.YearMonth.String(),
		"status":           string(c.Status),
	}
	for k, v := range extra {
		data[k] = v
	}

	err := n.svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: c.EmployeeID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data:        data,
	})
	if err != nil {
		slog.Warn("Dropped notification",
			"type", typ,
			"consolidation_id", c.ID,
			"employee_id", c.EmployeeID,
			"error", err,
		)
	}
}
