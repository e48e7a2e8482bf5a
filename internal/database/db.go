package database

import (
	"tourdesk-backend/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logrus.WithError(err).Warn("Failed to auto-migrate models")
	}

	return db, nil
}

// Migrate applies the schema for every persisted model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Agent{},
		&model.Booking{},
		&model.InitialPayment{},
		&model.Instalment{},
		&model.InstalmentPayment{},
		&model.PassengerRefundPayment{},
		&model.Supplier{},
		&model.CostItemSupplier{},
		&model.SupplierPaymentSettlement{},
		&model.CustomerCreditNote{},
		&model.SupplierCreditNote{},
		&model.CreditNoteUsage{},
		&model.SupplierPayable{},
		&model.SupplierPayableSettlement{},
		&model.CustomerPayable{},
		&model.CustomerPayableSettlement{},
		&model.Cancellation{},
		&model.CommissionEntry{},
		&model.BookingAmendment{},
		&model.AuditLog{},
	)
}
