package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/itlx-network/agentreg/internal/syncutil"
	"github.com/itlx-network/agentreg/internal/traces"
	"github.com/prometheus/client_golang/prometheus"
)

// -----------------------------------------------------------------------------
// Balance verification contract
// -----------------------------------------------------------------------------

// BalanceOutcome is the three-way result of a balance verification.
type BalanceOutcome int

const (
	// BalanceSufficient: the account holds at least the minimum balance.
	BalanceSufficient BalanceOutcome = iota
	// BalanceInsufficient: the account balance is below the minimum.
	BalanceInsufficient
	// BalanceUnreachable: the check could not be completed (RPC failure,
	// timeout). The caller may retry; nothing was written.
	BalanceUnreachable
)

// BalanceVerifier answers "does this account hold the minimum ITLX balance".
// It crosses a process boundary and must be free of registry side effects;
// its answer is purely advisory input to the registration decision.
type BalanceVerifier interface {
	CheckBalance(ctx context.Context, ownerID string) (BalanceOutcome, error)
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

// Service coordinates registration. The flow per attempt:
//
//	validate metadata -> duplicate check -> balance verification -> commit
//
// The per-identity lock is held across the balance call, so a second attempt
// for the same identity arriving mid-verification queues behind the first
// and then fails the duplicate check. No store or index write happens before
// the balance outcome resolves, and the commit itself is atomic in the Store,
// so every rejection leaves the registry byte-for-byte unchanged.
type Service struct {
	store    Store
	verifier BalanceVerifier
	emitter  EventEmitter // optional
	locks    *syncutil.KeyMutex
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithEmitter sets the event emitter for committed registrations.
func WithEmitter(e EventEmitter) ServiceOption {
	return func(s *Service) { s.emitter = e }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the registration timestamp source (for tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a registration service.
func NewService(store Store, verifier BalanceVerifier, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		locks:    syncutil.NewKeyMutex(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register runs one registration attempt for ownerID. On success the agent
// record, its skill index entries, and the total counter are committed
// atomically and an agent_registered event is emitted exactly once.
func (s *Service) Register(ctx context.Context, ownerID string, metadata AgentMetadata) (*Agent, error) {
	timer := prometheus.NewTimer(registrationDuration)
	defer timer.ObserveDuration()

	ctx, span := traces.StartSpan(ctx, "registry.Register", traces.AgentID(ownerID))
	defer span.End()

	owner := strings.ToLower(strings.TrimSpace(ownerID))
	if owner == "" {
		registrationsTotal.WithLabelValues(outcomeInvalidMetadata).Inc()
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidMetadata)
	}

	// Reject malformed input before any I/O.
	if err := metadata.Validate(); err != nil {
		registrationsTotal.WithLabelValues(outcomeInvalidMetadata).Inc()
		return nil, err
	}
	metadata.Skills = metadata.DistinctSkills()

	// Serialize attempts per identity. The lock spans the balance call, so
	// the same owner cannot be admitted twice through the in-flight window.
	unlock, err := s.locks.LockContext(ctx, owner)
	if err != nil {
		registrationsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("registry: acquire identity lock: %w", err)
	}
	defer unlock()

	exists, err := s.store.HasAgent(ctx, owner)
	if err != nil {
		registrationsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("registry: duplicate check: %w", err)
	}
	if exists {
		registrationsTotal.WithLabelValues(outcomeDuplicate).Inc()
		return nil, ErrAlreadyRegistered
	}

	// The sole suspension point. Nothing has been written yet.
	outcome, verifyErr := s.verifyBalance(ctx, owner)
	switch outcome {
	case BalanceSufficient:
		// proceed to commit
	case BalanceInsufficient:
		registrationsTotal.WithLabelValues(outcomeInsufficient).Inc()
		return nil, ErrInsufficientBalance
	case BalanceUnreachable:
		registrationsTotal.WithLabelValues(outcomeUnavailable).Inc()
		s.logger.Warn("balance verification unavailable", "owner", owner, "error", verifyErr)
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, verifyErr)
	default:
		registrationsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("registry: unexpected balance outcome %d", outcome)
	}

	agent := &Agent{
		OwnerID:      owner,
		Metadata:     metadata,
		RegisteredAt: s.now(),
	}

	// Atomic commit: record + skill index + counter in one store call. If a
	// duplicate raced in despite the identity lock (e.g. a second process),
	// the store rejects it and no index entry is written.
	if err := s.commit(ctx, agent); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			registrationsTotal.WithLabelValues(outcomeDuplicate).Inc()
			return nil, ErrAlreadyRegistered
		}
		registrationsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("registry: commit: %w", err)
	}

	registrationsTotal.WithLabelValues(outcomeCommitted).Inc()
	s.logger.Info("agent registered",
		"owner", agent.OwnerID,
		"name", agent.Metadata.Name,
		"skills", len(agent.Metadata.Skills),
	)

	if s.emitter != nil {
		s.emitter.EmitAgentRegistered(NewAgentRegisteredEvent(agent.OwnerID, agent.Metadata.Skills))
		registrationEventsTotal.Inc()
	}

	return agent, nil
}

func (s *Service) verifyBalance(ctx context.Context, owner string) (BalanceOutcome, error) {
	ctx, span := traces.StartSpan(ctx, "registry.VerifyBalance", traces.AgentID(owner))
	defer span.End()
	return s.verifier.CheckBalance(ctx, owner)
}

func (s *Service) commit(ctx context.Context, agent *Agent) error {
	ctx, span := traces.StartSpan(ctx, "registry.Commit", traces.AgentID(agent.OwnerID))
	defer span.End()
	return s.store.CreateAgent(ctx, agent)
}

// -----------------------------------------------------------------------------
// Queries (read-only, never observe in-flight registrations)
// -----------------------------------------------------------------------------

// GetAgent returns the committed agent for the owner, or ErrAgentNotFound.
func (s *Service) GetAgent(ctx context.Context, ownerID string) (*Agent, error) {
	return s.store.GetAgent(ctx, ownerID)
}

// GetAgentSkills returns the committed skills for the owner.
func (s *Service) GetAgentSkills(ctx context.Context, ownerID string) ([]string, error) {
	return s.store.AgentSkills(ctx, ownerID)
}

// GetAgentsBySkill returns every committed owner claiming the skill.
func (s *Service) GetAgentsBySkill(ctx context.Context, skill string) ([]string, error) {
	return s.store.AgentsBySkill(ctx, skill)
}

// GetTotalAgents returns the committed registration count.
func (s *Service) GetTotalAgents(ctx context.Context) (uint64, error) {
	return s.store.TotalAgents(ctx)
}

// GetStats returns the aggregate network view.
func (s *Service) GetStats(ctx context.Context) (*NetworkStats, error) {
	return s.store.Stats(ctx)
}
