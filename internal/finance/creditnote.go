package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tourdesk-backend/pkg/apperror"
)

// NoteState is a credit note as read inside the consuming transaction.
// Callers must load these from locked rows so the validation holds until
// commit.
type NoteState struct {
	ID           uuid.UUID
	Counterparty string
	Remaining    decimal.Decimal
	Spent        bool
}

// ApplicationLine is the caller's request to draw an amount from one note.
type ApplicationLine struct {
	NoteID uuid.UUID
	Amount decimal.Decimal
}

// ValidateCreditNoteApplication checks one credit-note funding operation
// before any mutation: every note must belong to the counterparty and still
// hold enough value, and the lines must cover the required amount exactly
// (within tolerance). Any failure rejects the whole operation.
func ValidateCreditNoteApplication(notes []NoteState, lines []ApplicationLine, requiredCover decimal.Decimal, counterparty string) error {
	if len(lines) == 0 {
		return apperror.Validation("no credit notes selected")
	}

	byID := make(map[uuid.UUID]NoteState, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}

	// A note may appear in several lines of one operation; draws accumulate.
	drawn := make(map[uuid.UUID]decimal.Decimal, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		note, ok := byID[line.NoteID]
		if !ok {
			return apperror.NotFound("credit note %s not found", line.NoteID)
		}
		if note.Counterparty != counterparty {
			return apperror.Validation("credit note %s belongs to %q, not %q", note.ID, note.Counterparty, counterparty)
		}
		if note.Spent {
			return apperror.Conflict("credit note %s is already used", note.ID)
		}
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return apperror.Validation("credit note amount to use must be positive")
		}

		drawn[line.NoteID] = drawn[line.NoteID].Add(line.Amount)
		if drawn[line.NoteID].Sub(note.Remaining).GreaterThanOrEqual(Tolerance) {
			return apperror.Conflict("credit note %s has %s remaining, %s requested",
				note.ID, note.Remaining.StringFixed(2), drawn[line.NoteID].StringFixed(2))
		}
		total = total.Add(line.Amount)
	}

	if !Settled(total.Sub(requiredCover)) {
		return apperror.Validation("credit note amounts total %s but %s is required",
			total.StringFixed(2), requiredCover.StringFixed(2))
	}

	return nil
}
