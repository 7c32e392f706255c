package registry

// Event envelope for registry lifecycle events, emitted once per committed
// registration for external observers and indexers.

const (
	// EventStandard identifies the event schema family.
	EventStandard = "itlx-registry"
	// EventVersion is the current schema version.
	EventVersion = "1.0.0"
	// EventAgentRegistered is emitted when a registration commits.
	EventAgentRegistered = "agent_registered"
)

// AgentRegisteredData is the payload of an agent_registered event.
type AgentRegisteredData struct {
	AgentID string   `json:"agent_id"`
	Skills  []string `json:"skills"`
}

// RegistrationEvent is the structured record sent to observers.
type RegistrationEvent struct {
	Standard string                `json:"standard"`
	Version  string                `json:"version"`
	Event    string                `json:"event"`
	Data     []AgentRegisteredData `json:"data"`
}

// NewAgentRegisteredEvent builds the event for one committed registration.
func NewAgentRegisteredEvent(ownerID string, skills []string) *RegistrationEvent {
	return &RegistrationEvent{
		Standard: EventStandard,
		Version:  EventVersion,
		Event:    EventAgentRegistered,
		Data:     []AgentRegisteredData{{AgentID: ownerID, Skills: skills}},
	}
}

// EventEmitter delivers registration events to observers. Delivery is
// fire-and-forget: a committed registration never fails on emit.
type EventEmitter interface {
	EmitAgentRegistered(event *RegistrationEvent)
}
