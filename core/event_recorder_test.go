package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
)

func Test_EventRecorder_DrainReturnsEventsInRecordingOrder_AndClears(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	fakeClock := time.Unix(0, 0).UTC()
	first := core.BuildAbonentRegistered(uuid.New(), fakeClock)
	second := core.BuildAbonentRegistered(uuid.New(), fakeClock.Add(time.Minute))

	// act
	recorder.Record(first)
	recorder.Record(second)
	drained := recorder.Drain()

	// assert
	assert.Equal(t, core.DomainEvents{first, second}, drained, "Drain should preserve recording order")
	assert.Equal(t, 0, recorder.Pending(), "Drain should clear the recorder")
	assert.Empty(t, recorder.Drain(), "Second drain should yield nothing")
}

func Test_EventRecorder_ZeroValueIsReady(t *testing.T) {
	var recorder core.EventRecorder

	assert.Equal(t, 0, recorder.Pending(), "Zero value should start empty")

	recorder.Record(core.BuildAbonentRegistered(uuid.New(), time.Unix(0, 0).UTC()))
	assert.Equal(t, 1, recorder.Pending(), "Zero value should accept events")
}
