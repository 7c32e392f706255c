package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for duplicate primary keys.
const uniqueViolation = "23505"

// PostgresStore implements Store on PostgreSQL. The agent row, its skill
// index rows, and the counter row are written inside a single transaction,
// so the commit is atomic and readers outside the transaction see either
// the whole registration or none of it.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed store. Schema is managed by
// the migrations/ directory (cmd/migrate).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Compile-time interface check
var _ Store = (*PostgresStore)(nil)

func (p *PostgresStore) CreateAgent(ctx context.Context, agent *Agent) error {
	owner := strings.ToLower(agent.OwnerID)
	skills := agent.Metadata.DistinctSkills()

	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO agents (address, name, description, purpose, skills, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, owner, agent.Metadata.Name, agent.Metadata.Description, agent.Metadata.Purpose,
		skillsJSON, agent.RegisteredAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert agent: %w", err)
	}

	for _, skill := range skills {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO agent_skills (skill, agent_address)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, skill, owner); err != nil {
			return fmt.Errorf("index skill %q: %w", skill, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE registry_stats
		SET total_agents = total_agents + 1, updated_at = NOW()
		WHERE id = 1
	`); err != nil {
		return fmt.Errorf("increment total agents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}

	return nil
}

func (p *PostgresStore) GetAgent(ctx context.Context, ownerID string) (*Agent, error) {
	var agent Agent
	var skillsJSON []byte
	var registeredAt time.Time

	err := p.db.QueryRowContext(ctx, `
		SELECT address, name, description, purpose, skills, registered_at
		FROM agents WHERE address = $1
	`, strings.ToLower(ownerID)).Scan(
		&agent.OwnerID,
		&agent.Metadata.Name,
		&agent.Metadata.Description,
		&agent.Metadata.Purpose,
		&skillsJSON,
		&registeredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}

	agent.RegisteredAt = registeredAt
	if err := json.Unmarshal(skillsJSON, &agent.Metadata.Skills); err != nil {
		return nil, fmt.Errorf("unmarshal skills for %s: %w", agent.OwnerID, err)
	}

	return &agent, nil
}

func (p *PostgresStore) HasAgent(ctx context.Context, ownerID string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM agents WHERE address = $1)
	`, strings.ToLower(ownerID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check agent exists: %w", err)
	}
	return exists, nil
}

func (p *PostgresStore) AgentSkills(ctx context.Context, ownerID string) ([]string, error) {
	var skillsJSON []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT skills FROM agents WHERE address = $1
	`, strings.ToLower(ownerID)).Scan(&skillsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agent skills: %w", err)
	}

	var skills []string
	if err := json.Unmarshal(skillsJSON, &skills); err != nil {
		return nil, fmt.Errorf("unmarshal skills: %w", err)
	}
	return skills, nil
}

func (p *PostgresStore) AgentsBySkill(ctx context.Context, skill string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT agent_address FROM agent_skills
		WHERE skill = $1
		ORDER BY agent_address
	`, skill)
	if err != nil {
		return nil, fmt.Errorf("query skill %q: %w", skill, err)
	}
	defer func() { _ = rows.Close() }()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}

	return owners, nil
}

func (p *PostgresStore) TotalAgents(ctx context.Context) (uint64, error) {
	var total uint64
	err := p.db.QueryRowContext(ctx, `
		SELECT total_agents FROM registry_stats WHERE id = 1
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("get total agents: %w", err)
	}
	return total, nil
}

func (p *PostgresStore) Stats(ctx context.Context) (*NetworkStats, error) {
	var stats NetworkStats
	err := p.db.QueryRowContext(ctx, `
		SELECT s.total_agents,
		       (SELECT COUNT(DISTINCT skill) FROM agent_skills),
		       s.updated_at
		FROM registry_stats s WHERE s.id = 1
	`).Scan(&stats.TotalAgents, &stats.TotalSkills, &stats.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get network stats: %w", err)
	}
	return &stats, nil
}
