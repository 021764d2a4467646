package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/condominio-api/internal/models"
)

// EventFSM wraps a maintenance event with its state machine
type EventFSM struct {
	event *models.MaintenanceEvent
	fsm   *fsm.FSM
}

// NewEventFSM creates a new maintenance event state machine
func NewEventFSM(event *models.MaintenanceEvent) *EventFSM {
	efsm := &EventFSM{
		event: event,
	}

	efsm.fsm = fsm.NewFSM(
		event.Status,
		fsm.Events{
			// open → closed
			{Name: "close", Src: []string{models.EventStatusOpen}, Dst: models.EventStatusClosed},

			// closed → open (reopen)
			{Name: "reopen", Src: []string{models.EventStatusClosed}, Dst: models.EventStatusOpen},
		},
		fsm.Callbacks{},
	)

	return efsm
}

// Close transitions the event to closed state
func (e *EventFSM) Close(ctx context.Context) error {
	if !e.event.MayClose() {
		return fmt.Errorf("event cannot be closed in current state: %s", e.event.Status)
	}

	if err := e.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("failed to close event: %w", err)
	}

	e.event.Status = e.fsm.Current()
	return nil
}

// Reopen transitions the event from closed back to open
func (e *EventFSM) Reopen(ctx context.Context) error {
	if !e.event.MayReopen() {
		return fmt.Errorf("event cannot be reopened in current state: %s", e.event.Status)
	}

	if err := e.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("failed to reopen event: %w", err)
	}

	e.event.Status = e.fsm.Current()
	return nil
}

// Current returns the current state
func (e *EventFSM) Current() string {
	return e.fsm.Current()
}

// Can checks if a transition is possible
func (e *EventFSM) Can(event string) bool {
	return e.fsm.Can(event)
}
