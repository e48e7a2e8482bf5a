package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk-backend/pkg/apperror"
)

func TestValidateCreditNoteApplicationExactCover(t *testing.T) {
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: d(150)}}
	lines := []ApplicationLine{{NoteID: noteID, Amount: d(150)}}

	err := ValidateCreditNoteApplication(notes, lines, d(150), "Jane Doe")
	require.NoError(t, err)
}

func TestValidateCreditNoteApplicationMultipleNotes(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	notes := []NoteState{
		{ID: a, Counterparty: "Jane Doe", Remaining: d(100)},
		{ID: b, Counterparty: "Jane Doe", Remaining: d(80)},
	}
	lines := []ApplicationLine{
		{NoteID: a, Amount: d(100)},
		{NoteID: b, Amount: d(50)},
	}

	require.NoError(t, ValidateCreditNoteApplication(notes, lines, d(150), "Jane Doe"))
}

func TestValidateCreditNoteApplicationCoverMismatch(t *testing.T) {
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: d(150)}}
	lines := []ApplicationLine{{NoteID: noteID, Amount: d(120)}}

	err := ValidateCreditNoteApplication(notes, lines, d(150), "Jane Doe")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestValidateCreditNoteApplicationCoverWithinTolerance(t *testing.T) {
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: d(150)}}
	lines := []ApplicationLine{{NoteID: noteID, Amount: d(149.995)}}

	require.NoError(t, ValidateCreditNoteApplication(notes, lines, d(150), "Jane Doe"))
}

func TestValidateCreditNoteApplicationCounterpartyMismatch(t *testing.T) {
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: d(150)}}
	lines := []ApplicationLine{{NoteID: noteID, Amount: d(150)}}

	err := ValidateCreditNoteApplication(notes, lines, d(150), "John Smith")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestValidateCreditNoteApplicationOverdraw(t *testing.T) {
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: d(100)}}
	lines := []ApplicationLine{{NoteID: noteID, Amount: d(150)}}

	err := ValidateCreditNoteApplication(notes, lines, d(150), "Jane Doe")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err), "insufficient funds is stale state, not bad input")
}

func TestValidateCreditNoteApplicationAccumulatedOverdraw(t *testing.T) {
	// Two lines against the same note must not exceed its remaining amount
	// together even if each fits alone.
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: d(100)}}
	lines := []ApplicationLine{
		{NoteID: noteID, Amount: d(60)},
		{NoteID: noteID, Amount: d(60)},
	}

	err := ValidateCreditNoteApplication(notes, lines, d(120), "Jane Doe")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestValidateCreditNoteApplicationSpentNote(t *testing.T) {
	noteID := uuid.New()
	notes := []NoteState{{ID: noteID, Counterparty: "Jane Doe", Remaining: decimal.Zero, Spent: true}}
	lines := []ApplicationLine{{NoteID: noteID, Amount: d(10)}}

	err := ValidateCreditNoteApplication(notes, lines, d(10), "Jane Doe")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestValidateCreditNoteApplicationUnknownNote(t *testing.T) {
	err := ValidateCreditNoteApplication(nil, []ApplicationLine{{NoteID: uuid.New(), Amount: d(10)}}, d(10), "Jane Doe")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestValidateCreditNoteApplicationEmptyLines(t *testing.T) {
	err := ValidateCreditNoteApplication(nil, nil, d(10), "Jane Doe")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
