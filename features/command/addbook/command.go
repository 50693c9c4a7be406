package addbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to add copies of a book title to the library.
// It encapsulates all the necessary information required to execute the add book use case.
type Command struct {
	BookID          uuid.UUID
	Title           string
	ISBN            string
	PublicationDate core.PublicationDate
	Authors         []core.Author
	Copies          uint
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The ISBN is accepted raw and validated by the handler.
func BuildCommand(
	bookID uuid.UUID,
	title string,
	isbn string,
	publicationDate core.PublicationDate,
	authors []core.Author,
	copies uint,
	occurredAt time.Time,
) Command {

	return Command{
		BookID:          bookID,
		Title:           title,
		ISBN:            isbn,
		PublicationDate: publicationDate,
		Authors:         authors,
		Copies:          copies,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
