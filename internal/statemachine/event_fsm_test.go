package statemachine

import (
	"context"
	"testing"

	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEventFSMCloseAndReopen(t *testing.T) {
	event := &models.MaintenanceEvent{ID: 1, Name: "Reparación de techo", Status: models.EventStatusOpen}
	efsm := NewEventFSM(event)
	ctx := context.Background()

	assert.Equal(t, models.EventStatusOpen, efsm.Current())
	assert.True(t, efsm.Can("close"))
	assert.False(t, efsm.Can("reopen"))

	err := efsm.Close(ctx)
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusClosed, event.Status)

	err = efsm.Reopen(ctx)
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, event.Status)
}

func TestEventFSMInvalidTransitions(t *testing.T) {
	ctx := context.Background()

	closed := &models.MaintenanceEvent{ID: 1, Status: models.EventStatusClosed}
	err := NewEventFSM(closed).Close(ctx)
	assert.Error(t, err)
	assert.Equal(t, models.EventStatusClosed, closed.Status)

	open := &models.MaintenanceEvent{ID: 2, Status: models.EventStatusOpen}
	err = NewEventFSM(open).Reopen(ctx)
	assert.Error(t, err)
	assert.Equal(t, models.EventStatusOpen, open.Status)
}
