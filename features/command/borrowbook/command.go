package borrowbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
)

const (
	commandType = "BorrowBook"
)

// Command represents the intent of an abonent to borrow a book.
// ReturnBefore is optional; when nil the default borrowing period applies.
type Command struct {
	BookID       uuid.UUID
	AbonentID    uuid.UUID
	ReturnBefore *time.Time
	OccurredAt   core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, abonentID uuid.UUID, returnBefore *time.Time, occurredAt time.Time) Command {
	return Command{
		BookID:       bookID,
		AbonentID:    abonentID,
		ReturnBefore: returnBefore,
		OccurredAt:   core.ToOccurredAt(occurredAt),
	}
}
