// Package registry implements agent registration and skill-based discovery.
// Registration is gated on the caller holding a minimum ITLX balance,
// verified on-chain before any state is written.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	ErrAgentNotFound           = errors.New("registry: agent not found")
	ErrAlreadyRegistered       = errors.New("registry: agent already registered")
	ErrInvalidMetadata         = errors.New("registry: invalid metadata")
	ErrInsufficientBalance     = errors.New("registry: insufficient ITLX balance")
	ErrVerificationUnavailable = errors.New("registry: balance verification unavailable")
)

// -----------------------------------------------------------------------------
// Metadata bounds
// -----------------------------------------------------------------------------

const (
	MaxNameLength        = 128
	MaxDescriptionLength = 1024
	MaxPurposeLength     = 512
	MaxSkills            = 32
	MaxSkillLength       = 64
)

// -----------------------------------------------------------------------------
// Core Types
// -----------------------------------------------------------------------------

// AgentMetadata describes an agent at registration time. Immutable after
// the registration commits.
type AgentMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
	Purpose     string   `json:"purpose,omitempty"`
}

// Agent is one registered principal. OwnerID is the wallet address that
// performed the registration and is the primary key.
type Agent struct {
	OwnerID      string        `json:"ownerId"`
	Metadata     AgentMetadata `json:"metadata"`
	RegisteredAt time.Time     `json:"registeredAt"`
}

// Validate checks metadata bounds. All violations wrap ErrInvalidMetadata
// so callers can match the whole class with errors.Is.
func (m AgentMetadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	}
	if len(m.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidMetadata, MaxNameLength)
	}
	if len(m.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidMetadata, MaxDescriptionLength)
	}
	if len(m.Purpose) > MaxPurposeLength {
		return fmt.Errorf("%w: purpose exceeds %d characters", ErrInvalidMetadata, MaxPurposeLength)
	}
	if len(m.Skills) > MaxSkills {
		return fmt.Errorf("%w: more than %d skills", ErrInvalidMetadata, MaxSkills)
	}
	for _, skill := range m.Skills {
		if skill == "" {
			return fmt.Errorf("%w: empty skill tag", ErrInvalidMetadata)
		}
		if len(skill) > MaxSkillLength {
			return fmt.Errorf("%w: skill %q exceeds %d characters", ErrInvalidMetadata, skill, MaxSkillLength)
		}
	}
	return nil
}

// DistinctSkills returns the skills list with duplicates collapsed,
// preserving first-seen order. The skill index is always built from this set.
func (m AgentMetadata) DistinctSkills() []string {
	seen := make(map[string]struct{}, len(m.Skills))
	distinct := make([]string, 0, len(m.Skills))
	for _, skill := range m.Skills {
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		distinct = append(distinct, skill)
	}
	return distinct
}

// -----------------------------------------------------------------------------
// Request Types
// -----------------------------------------------------------------------------

// RegisterAgentRequest is the payload for agent registration.
type RegisterAgentRequest struct {
	Address     string   `json:"address" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Purpose     string   `json:"purpose"`
}

// NetworkStats is the aggregate view exposed at /network/stats.
type NetworkStats struct {
	TotalAgents uint64    `json:"totalAgents"`
	TotalSkills uint64    `json:"totalSkills"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
