package returnbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to return a borrowed book to the library.
type Command struct {
	BookID     uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
