package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"tourdesk-backend/internal/database"
	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturingPublisher) Publish(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) has(event string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == event {
			return true
		}
	}
	return false
}

// testEnv wires the full service graph onto an in-memory database.
type testEnv struct {
	db        *gorm.DB
	publisher *capturingPublisher

	agents        AgentService
	bookings      BookingService
	payments      PaymentService
	suppliers     SupplierService
	creditNotes   CreditNoteService
	cancellations CancellationService
	settlements   SettlementService
	amendments    AmendmentService
	commissions   CommissionService
}

var testDBSeq int

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	publisher := &capturingPublisher{}

	txManager := repository.NewTransactionManager(db)
	agentRepo := repository.NewAgentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	creditNoteRepo := repository.NewCreditNoteRepository(db)
	payableRepo := repository.NewPayableRepository(db)
	cancellationRepo := repository.NewCancellationRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	amendmentRepo := repository.NewAmendmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	commissionService := NewCommissionService(commissionRepo, agentRepo, amendmentRepo, log)
	reconcileService := NewReconcileService(bookingRepo, paymentRepo, supplierRepo, payableRepo, amendmentRepo, commissionService, publisher, log)
	creditNoteService := NewCreditNoteService(creditNoteRepo)

	return &testEnv{
		db:            db,
		publisher:     publisher,
		agents:        NewAgentService(txManager, agentRepo, auditRepo),
		bookings:      NewBookingService(txManager, bookingRepo, agentRepo, paymentRepo, amendmentRepo, cancellationRepo, commissionRepo, auditRepo, commissionService, reconcileService, log),
		payments:      NewPaymentService(txManager, bookingRepo, paymentRepo, cancellationRepo, auditRepo, creditNoteService, reconcileService, log),
		suppliers:     NewSupplierService(txManager, bookingRepo, supplierRepo, auditRepo, creditNoteService, reconcileService, log),
		creditNotes:   creditNoteService,
		cancellations: NewCancellationService(txManager, bookingRepo, paymentRepo, supplierRepo, payableRepo, cancellationRepo, auditRepo, creditNoteService, publisher, log),
		settlements:   NewSettlementService(txManager, payableRepo, supplierRepo, auditRepo, creditNoteService, reconcileService, log),
		amendments:    NewAmendmentService(txManager, bookingRepo, amendmentRepo, auditRepo, reconcileService, log),
		commissions:   commissionService,
	}
}

func (e *testEnv) createAgent(t *testing.T) *AgentResponse {
	t.Helper()
	agent, err := e.agents.Create(context.Background(), "", CreateAgentRequest{Name: "Acme Travel"})
	require.NoError(t, err)
	return agent
}

func (e *testEnv) createSupplier(t *testing.T, name string) *SupplierResponse {
	t.Helper()
	supplier, err := e.suppliers.CreateSupplier(context.Background(), "", CreateSupplierRequest{Name: name})
	require.NoError(t, err)
	return supplier
}

// createBooking creates and approves a booking ready to take payments.
func (e *testEnv) createBooking(t *testing.T, revenue, prodCost, method string) *BookingResponse {
	t.Helper()
	agent := e.createAgent(t)
	booking, err := e.bookings.Create(context.Background(), "", CreateBookingRequest{
		CustomerName:  "Jordan Lee",
		AgentID:       agent.ID.String(),
		Revenue:       revenue,
		ProdCost:      prodCost,
		PaymentMethod: method,
	})
	require.NoError(t, err)

	approved, err := e.bookings.Approve(context.Background(), "", booking.ID.String())
	require.NoError(t, err)
	return approved
}

func (e *testEnv) payInitial(t *testing.T, bookingID, amount string) *BookingResponse {
	t.Helper()
	booking, err := e.payments.RecordInitialPayment(context.Background(), "", bookingID, RecordPaymentRequest{
		Amount: amount,
		Method: model.TenderBankTransfer,
	})
	require.NoError(t, err)
	return booking
}
