// Package notify broadcasts team events to connected clients.
//
// Handlers hand events to a Publisher, which forwards them to a Broker on a
// worker pool. The Broker either delivers straight into the local Hub or goes
// through a Redis channel so that every instance's Hub receives the event.
// Clients read the Hub over Server-Sent Events.
package notify

import "time"

// Event names emitted by the team module.
const (
	EventTeamCreated = "newTeamAdded"
	EventTeamJoined  = "teamJoined"
)

// Event is a single broadcast message.
type Event struct {
	Name      string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(name string, payload any) Event {
	return Event{Name: name, Payload: payload, Timestamp: time.Now().UTC()}
}
