package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// Store Interface
// -----------------------------------------------------------------------------

// Store is the persistence contract for the registry.
//
// CreateAgent is the only write. It must apply the agent record, the skill
// index entries, and the total-agents counter as one atomic commit: either a
// reader sees none of them or all of them. There is deliberately no update
// or delete; registrations are append-only.
type Store interface {
	// CreateAgent inserts the agent, indexes its distinct skills, and
	// increments the total count. Returns ErrAlreadyRegistered if an agent
	// with the same owner already exists.
	CreateAgent(ctx context.Context, agent *Agent) error

	// GetAgent returns the agent for the owner, or ErrAgentNotFound.
	GetAgent(ctx context.Context, ownerID string) (*Agent, error)

	// HasAgent reports whether the owner is registered. Consistent with
	// GetAgent by construction.
	HasAgent(ctx context.Context, ownerID string) (bool, error)

	// AgentSkills returns the stored (distinct, ordered) skills for the
	// owner, or ErrAgentNotFound.
	AgentSkills(ctx context.Context, ownerID string) ([]string, error)

	// AgentsBySkill returns every owner whose metadata contains the skill.
	// Absent skills yield an empty slice, never an error.
	AgentsBySkill(ctx context.Context, skill string) ([]string, error)

	// TotalAgents returns the maintained counter. Never derived by scan.
	TotalAgents(ctx context.Context) (uint64, error)

	// Stats returns the aggregate network view.
	Stats(ctx context.Context) (*NetworkStats, error)
}

// -----------------------------------------------------------------------------
// In-Memory Store
// -----------------------------------------------------------------------------

// MemoryStore is a thread-safe in-memory Store. A single mutex covers the
// agent map, the skill index, and the counter, so the three are updated in
// one critical section and readers never observe a partial commit.
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]*Agent              // owner -> agent
	skills map[string]map[string]struct{} // skill -> set of owners
	total  uint64
	asOf   time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents: make(map[string]*Agent),
		skills: make(map[string]map[string]struct{}),
		asOf:   time.Now(),
	}
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) CreateAgent(ctx context.Context, agent *Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner := strings.ToLower(agent.OwnerID)
	if _, exists := m.agents[owner]; exists {
		return ErrAlreadyRegistered
	}

	stored := *agent
	stored.OwnerID = owner
	stored.Metadata.Skills = agent.Metadata.DistinctSkills()

	m.agents[owner] = &stored
	for _, skill := range stored.Metadata.Skills {
		set, ok := m.skills[skill]
		if !ok {
			set = make(map[string]struct{})
			m.skills[skill] = set
		}
		set[owner] = struct{}{}
	}
	m.total++
	m.asOf = time.Now()

	return nil
}

func (m *MemoryStore) GetAgent(ctx context.Context, ownerID string) (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agent, exists := m.agents[strings.ToLower(ownerID)]
	if !exists {
		return nil, ErrAgentNotFound
	}

	// Return a copy to prevent mutation
	out := *agent
	out.Metadata.Skills = append([]string(nil), agent.Metadata.Skills...)
	return &out, nil
}

func (m *MemoryStore) HasAgent(ctx context.Context, ownerID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.agents[strings.ToLower(ownerID)]
	return exists, nil
}

func (m *MemoryStore) AgentSkills(ctx context.Context, ownerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agent, exists := m.agents[strings.ToLower(ownerID)]
	if !exists {
		return nil, ErrAgentNotFound
	}
	return append([]string(nil), agent.Metadata.Skills...), nil
}

func (m *MemoryStore) AgentsBySkill(ctx context.Context, skill string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.skills[skill]
	if !ok {
		return []string{}, nil
	}

	owners := make([]string, 0, len(set))
	for owner := range set {
		owners = append(owners, owner)
	}
	sort.Strings(owners) // Deterministic output for callers and tests
	return owners, nil
}

func (m *MemoryStore) TotalAgents(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (*NetworkStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &NetworkStats{
		TotalAgents: m.total,
		TotalSkills: uint64(len(m.skills)),
		UpdatedAt:   m.asOf,
	}, nil
}
