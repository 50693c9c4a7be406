package registerabonent

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
)

const (
	commandType = "RegisterAbonent"
)

// Command represents the intent to register a new library abonent.
// The email is accepted raw and validated by the handler.
type Command struct {
	AbonentID  uuid.UUID
	Name       string
	Email      string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(abonentID uuid.UUID, name string, email string, occurredAt time.Time) Command {
	return Command{
		AbonentID:  abonentID,
		Name:       name,
		Email:      email,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
