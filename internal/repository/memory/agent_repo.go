package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"dispatchmap/internal/domain/entities"
)

var ErrAgentNotFound = errors.New("agent not found")

type AgentRepository struct {
	mu     sync.RWMutex
	agents map[string]*entities.Agent
}

func NewAgentRepository() *AgentRepository {
	return &AgentRepository{
		agents: make(map[string]*entities.Agent),
	}
}

func (r *AgentRepository) GetByID(ctx context.Context, id string) (*entities.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[id]
	if !exists {
		return nil, ErrAgentNotFound
	}
	cp := *agent
	return &cp, nil
}

// GetOrCreate returns the agent, registering it as offline on first contact.
func (r *AgentRepository) GetOrCreate(ctx context.Context, id string) (*entities.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if agent, exists := r.agents[id]; exists {
		cp := *agent
		return &cp, nil
	}

	agent := entities.NewAgent(id)
	r.agents[id] = agent
	cp := *agent
	return &cp, nil
}

func (r *AgentRepository) Update(ctx context.Context, agent *entities.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[agent.ID]; !exists {
		return ErrAgentNotFound
	}
	cp := *agent
	r.agents[agent.ID] = &cp
	return nil
}

// ListOnline returns online agents sorted by id.
func (r *AgentRepository) ListOnline(ctx context.Context) ([]*entities.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var online []*entities.Agent
	for _, agent := range r.agents {
		if agent.IsOnline() {
			cp := *agent
			online = append(online, &cp)
		}
	}
	sort.Slice(online, func(i, j int) bool {
		return online[i].ID < online[j].ID
	})
	return online, nil
}
