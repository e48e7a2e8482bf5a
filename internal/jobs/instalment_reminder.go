package jobs

import (
	"context"

	"tourdesk-backend/internal/finance"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// InstalmentReminder periodically scans for instalments past their due date
// that are not fully paid and pushes a reminder event to connected clients.
// It never mutates booking state.
type InstalmentReminder struct {
	paymentRepo repository.PaymentRepository
	publisher   service.EventPublisher
	cron        *cron.Cron
}

func NewInstalmentReminder(paymentRepo repository.PaymentRepository, publisher service.EventPublisher) *InstalmentReminder {
	return &InstalmentReminder{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		cron:        cron.New(),
	}
}

// Start schedules the daily scan. The schedule can be overridden for tests
// by calling Run directly.
func (j *InstalmentReminder) Start() error {
	if _, err := j.cron.AddFunc("0 8 * * *", func() {
		j.Run(context.Background())
	}); err != nil {
		return err
	}
	j.cron.Start()
	logrus.Info("Instalment reminder job scheduled")
	return nil
}

func (j *InstalmentReminder) Stop() {
	j.cron.Stop()
}

// Run performs one scan and publishes one event per overdue instalment.
func (j *InstalmentReminder) Run(ctx context.Context) {
	instalments, err := j.paymentRepo.ListOverdueInstalments(ctx)
	if err != nil {
		logrus.WithError(err).Error("Overdue instalment scan failed")
		return
	}

	overdue := 0
	for i := range instalments {
		inst := &instalments[i]

		paid := decimal.Zero
		for _, p := range inst.Payments {
			paid = paid.Add(p.Amount)
		}
		outstanding := inst.Amount.Sub(paid)
		if finance.Settled(outstanding) {
			continue
		}

		overdue++
		j.publisher.Publish("instalment.overdue", map[string]interface{}{
			"instalment_id": inst.ID,
			"booking_id":    inst.BookingID,
			"due_date":      inst.DueDate,
			"amount":        inst.Amount.StringFixed(2),
			"outstanding":   outstanding.StringFixed(2),
		})
	}

	logrus.WithFields(logrus.Fields{
		"scanned": len(instalments),
		"overdue": overdue,
	}).Info("Instalment reminder scan finished")
}
