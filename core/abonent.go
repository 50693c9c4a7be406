package core

import (
	"time"

	"github.com/google/uuid"
)

// Abonent is the aggregate owning the registration identity of a library member.
// It is immutable once registered; re-registration is a separate concern.
type Abonent struct {
	ID    uuid.UUID
	Name  string
	Email EmailString
}

// RegisterAbonent registers a new library member and records an
// AbonentRegistered event. A nil id is a caller contract violation
// and panics.
//
// Business Rules:
//
//	GIVEN: A member name and email address
//	WHEN: RegisterAbonent is invoked
//	THEN: an AbonentRegistered event is recorded
//	ERROR: InvalidEmail if the email format is invalid
func RegisterAbonent(id uuid.UUID, name string, email string, occurredAt time.Time, recorder *EventRecorder) (*Abonent, error) {
	if id == uuid.Nil {
		panic("RegisterAbonent: nil abonent id")
	}

	validEmail, err := BuildEmail(email)
	if err != nil {
		return nil, err
	}

	abonent := &Abonent{
		ID:    id,
		Name:  name,
		Email: validEmail,
	}

	recorder.Record(BuildAbonentRegistered(abonent.ID, occurredAt))

	return abonent, nil
}
