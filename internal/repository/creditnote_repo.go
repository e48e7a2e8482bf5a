package repository

import (
	"context"

	"tourdesk-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditNoteListFilter struct {
	Counterparty string // customer name or supplier name
	Status       string
	Page         int
	Limit        int
}

type CreditNoteRepository interface {
	CreateCustomerNote(ctx context.Context, note *model.CustomerCreditNote) error
	CreateSupplierNote(ctx context.Context, note *model.SupplierCreditNote) error

	FindCustomerNoteByID(ctx context.Context, id uuid.UUID) (*model.CustomerCreditNote, error)
	FindSupplierNoteByID(ctx context.Context, id uuid.UUID) (*model.SupplierCreditNote, error)
	// ForUpdate variants lock the note row so a concurrent application of the
	// same note blocks until this transaction commits.
	FindCustomerNotesForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.CustomerCreditNote, error)
	FindSupplierNotesForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.SupplierCreditNote, error)

	UpdateCustomerNote(ctx context.Context, note *model.CustomerCreditNote) error
	UpdateSupplierNote(ctx context.Context, note *model.SupplierCreditNote) error

	ListCustomerNotes(ctx context.Context, filter CreditNoteListFilter) ([]model.CustomerCreditNote, int64, error)
	ListSupplierNotes(ctx context.Context, filter CreditNoteListFilter) ([]model.SupplierCreditNote, int64, error)

	CreateUsage(ctx context.Context, usage *model.CreditNoteUsage) error
	ListUsagesByNote(ctx context.Context, noteKind string, noteID uuid.UUID) ([]model.CreditNoteUsage, error)
	CountByPrefix(ctx context.Context, noteKind, prefix string) (int64, error)
}

type creditNoteRepository struct {
	db *gorm.DB
}

func NewCreditNoteRepository(db *gorm.DB) CreditNoteRepository {
	return &creditNoteRepository{db: db}
}

func (r *creditNoteRepository) CreateCustomerNote(ctx context.Context, note *model.CustomerCreditNote) error {
	return GetDB(ctx, r.db).Create(note).Error
}

func (r *creditNoteRepository) CreateSupplierNote(ctx context.Context, note *model.SupplierCreditNote) error {
	return GetDB(ctx, r.db).Create(note).Error
}

func (r *creditNoteRepository) FindCustomerNoteByID(ctx context.Context, id uuid.UUID) (*model.CustomerCreditNote, error) {
	var note model.CustomerCreditNote
	if err := GetDB(ctx, r.db).First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *creditNoteRepository) FindSupplierNoteByID(ctx context.Context, id uuid.UUID) (*model.SupplierCreditNote, error) {
	var note model.SupplierCreditNote
	if err := GetDB(ctx, r.db).First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *creditNoteRepository) FindCustomerNotesForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.CustomerCreditNote, error) {
	var notes []model.CustomerCreditNote
	if err := GetDBForUpdate(ctx, r.db).Where("id IN ?", ids).Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *creditNoteRepository) FindSupplierNotesForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.SupplierCreditNote, error) {
	var notes []model.SupplierCreditNote
	if err := GetDBForUpdate(ctx, r.db).Where("id IN ?", ids).Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *creditNoteRepository) UpdateCustomerNote(ctx context.Context, note *model.CustomerCreditNote) error {
	return GetDB(ctx, r.db).Save(note).Error
}

func (r *creditNoteRepository) UpdateSupplierNote(ctx context.Context, note *model.SupplierCreditNote) error {
	return GetDB(ctx, r.db).Save(note).Error
}

func (r *creditNoteRepository) ListCustomerNotes(ctx context.Context, filter CreditNoteListFilter) ([]model.CustomerCreditNote, int64, error) {
	var notes []model.CustomerCreditNote
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CustomerCreditNote{})
	if filter.Counterparty != "" {
		query = query.Where("customer_name = ?", filter.Counterparty)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&notes).Error; err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

func (r *creditNoteRepository) ListSupplierNotes(ctx context.Context, filter CreditNoteListFilter) ([]model.SupplierCreditNote, int64, error) {
	var notes []model.SupplierCreditNote
	var total int64

	query := GetDB(ctx, r.db).Model(&model.SupplierCreditNote{})
	if filter.Counterparty != "" {
		query = query.Where("supplier_name = ?", filter.Counterparty)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&notes).Error; err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

func (r *creditNoteRepository) CreateUsage(ctx context.Context, usage *model.CreditNoteUsage) error {
	return GetDB(ctx, r.db).Create(usage).Error
}

func (r *creditNoteRepository) ListUsagesByNote(ctx context.Context, noteKind string, noteID uuid.UUID) ([]model.CreditNoteUsage, error) {
	var usages []model.CreditNoteUsage
	if err := GetDB(ctx, r.db).Where("note_kind = ? AND note_id = ?", noteKind, noteID).
		Order("created_at asc").Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

func (r *creditNoteRepository) CountByPrefix(ctx context.Context, noteKind, prefix string) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db)
	var err error
	if noteKind == model.NoteKindCustomer {
		err = db.Model(&model.CustomerCreditNote{}).Where("note_no LIKE ?", prefix+"%").Count(&count).Error
	} else {
		err = db.Model(&model.SupplierCreditNote{}).Where("note_no LIKE ?", prefix+"%").Count(&count).Error
	}
	return count, err
}
