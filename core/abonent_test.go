package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
)

func Test_RegisterAbonent_RecordsAbonentRegisteredEvent(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	abonentID := uuid.New()
	fakeClock := time.Unix(0, 0).UTC()

	// act
	abonent, err := core.RegisterAbonent(abonentID, "Ada Lovelace", "ada@Example.ORG", fakeClock, recorder)

	// assert
	assert.NoError(t, err, "Should register the abonent")
	assert.Equal(t, abonentID, abonent.ID, "Should keep the supplied id")
	assert.Equal(t, "ada@example.org", abonent.Email, "Domain part of the email should be lowercased")

	events := recorder.Drain()
	assert.Len(t, events, 1, "Should record exactly one event")

	registered, ok := events[0].(core.AbonentRegistered)
	assert.True(t, ok, "Recorded event should be AbonentRegistered")
	assert.Equal(t, abonentID.String(), registered.AbonentID, "Event should carry the abonent id")
}

func Test_RegisterAbonent_Fails_WhenEmailIsInvalid(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}

	// act
	_, err := core.RegisterAbonent(uuid.New(), "Ada Lovelace", "not-an-email", time.Unix(0, 0).UTC(), recorder)

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidEmail, "Should reject an invalid email")
	assert.Equal(t, 0, recorder.Pending(), "No event should be recorded on failure")
}

func Test_RegisterAbonent_Panics_WhenIDIsNil(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = core.RegisterAbonent(uuid.Nil, "Ada Lovelace", "ada@example.org", time.Unix(0, 0).UTC(), &core.EventRecorder{})
	}, "Nil id is a contract violation")
}
