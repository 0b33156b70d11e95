// Package entities defines the domain values shared by the map service:
// coordinates, waypoints, order snapshots, routing results and the render
// model. Nothing in here touches HTTP, storage or logging.
package entities

import "time"

// AgentStatus is a typed string enum for the delivery agent's presence.
type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "online"
	AgentStatusOffline AgentStatus = "offline"
)

// Agent is a delivery agent known to this service. Agents are created on
// their first position report; the storefront backend remains the owner of
// their profile.
type Agent struct {
	ID        string      `json:"id"`
	Status    AgentStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewAgent creates an Agent in the offline state.
func NewAgent(id string) *Agent {
	now := time.Now()
	return &Agent{
		ID:        id,
		Status:    AgentStatusOffline,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Agent) IsOnline() bool {
	return a.Status == AgentStatusOnline
}

// SetStatus updates the status and records the change timestamp.
func (a *Agent) SetStatus(status AgentStatus) {
	a.Status = status
	a.UpdatedAt = time.Now()
}

// GoOnline marks the agent as sharing a position.
func (a *Agent) GoOnline() {
	a.SetStatus(AgentStatusOnline)
}

// GoOffline marks the agent's position as unavailable.
func (a *Agent) GoOffline() {
	a.SetStatus(AgentStatusOffline)
}
