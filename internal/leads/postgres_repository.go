package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithQuerier exists for tests using pgxmock.
func NewPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

const leadColumns = `
	id, lead_code, service_type, customer_name, customer_phone,
	location_address, location_lat, location_lng, special_instructions,
	status, source, raw_message, whatsapp_message_id, import_confidence,
	created_by_user_id, lead_generator_name, lead_generator_phone,
	claimed_by_user_id, claimed_at, proof_url, rejected_at,
	created_at, updated_at
`

// Create inserts a new row. The unique index on whatsapp_message_id is the
// authoritative dedup guard; a conflicting insert affects zero rows and maps
// to ErrDuplicateMessage so concurrent redeliveries can never double-insert.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	code := lead.LeadCode
	if code == "" {
		code = NewLeadCode(time.Now().UTC())
	}

	query := `
		INSERT INTO leads (
			id, lead_code, service_type, customer_name, customer_phone,
			location_address, location_lat, location_lng, special_instructions,
			status, source, raw_message, whatsapp_message_id, import_confidence,
			created_by_user_id, lead_generator_name, lead_generator_phone
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''),
			$10, $11, NULLIF($12, ''), NULLIF($13, ''), $14, $15, NULLIF($16, ''), NULLIF($17, ''))
		ON CONFLICT (whatsapp_message_id) DO NOTHING
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	err := r.pool.QueryRow(ctx, query,
		id,
		code,
		lead.ServiceType,
		lead.CustomerName,
		lead.CustomerPhone,
		lead.LocationAddress,
		lead.LocationLat,
		lead.LocationLng,
		lead.SpecialInstructions,
		lead.Status,
		lead.Source,
		lead.RawMessage,
		lead.WhatsAppMessageID,
		lead.ImportConfidence,
		lead.CreatedByUserID,
		lead.LeadGeneratorName,
		lead.LeadGeneratorPhone,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateMessage
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	stored := *lead
	stored.ID = id.String()
	stored.LeadCode = code
	stored.CreatedAt = createdAt
	stored.UpdatedAt = updatedAt
	return &stored, nil
}

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByMessageID fetches the lead created from a given channel message id.
func (r *PostgresRepository) GetByMessageID(ctx context.Context, messageID string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE whatsapp_message_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, messageID))
}

// List returns leads matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR source = $2)
		  AND ($3 = '' OR service_type = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Status), string(filter.Source), filter.ServiceType, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list rows: %w", err)
	}
	return out, nil
}

// UpdateStatus applies a lifecycle transition inside a transaction, rejecting
// illegal moves against the current row state.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, next Status, opts StatusUpdate) (*Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("leads: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	if err := tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: lock row: %w", err)
	}
	if !current.CanTransition(next) {
		return nil, ErrInvalidTransition
	}

	query := `
		UPDATE leads SET
			status = $2,
			claimed_by_user_id = CASE WHEN $2 = 'claimed' THEN NULLIF($3, '') ELSE claimed_by_user_id END,
			claimed_at = CASE WHEN $2 = 'claimed' THEN now() ELSE claimed_at END,
			proof_url = CASE WHEN $2 = 'completed' THEN NULLIF($4, '') ELSE proof_url END,
			rejected_at = CASE WHEN $2 = 'rejected' THEN now() ELSE rejected_at END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + leadColumns
	lead, err := r.scanOne(tx.QueryRow(ctx, query, id, string(next), opts.ClaimedByUserID, opts.ProofURL))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("leads: commit: %w", err)
	}
	return lead, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Lead, error) {
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	var name, address, instructions *string
	var rawMessage, messageID *string
	var generatorName, generatorPhone *string
	var claimedBy, proofURL *string
	err := row.Scan(
		&lead.ID,
		&lead.LeadCode,
		&lead.ServiceType,
		&name,
		&lead.CustomerPhone,
		&address,
		&lead.LocationLat,
		&lead.LocationLng,
		&instructions,
		&lead.Status,
		&lead.Source,
		&rawMessage,
		&messageID,
		&lead.ImportConfidence,
		&lead.CreatedByUserID,
		&generatorName,
		&generatorPhone,
		&claimedBy,
		&lead.ClaimedAt,
		&proofURL,
		&lead.RejectedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("leads: scan failed: %w", err)
	}

	lead.CustomerName = deref(name)
	lead.LocationAddress = deref(address)
	lead.SpecialInstructions = deref(instructions)
	lead.RawMessage = deref(rawMessage)
	lead.WhatsAppMessageID = deref(messageID)
	lead.LeadGeneratorName = deref(generatorName)
	lead.LeadGeneratorPhone = deref(generatorPhone)
	lead.ClaimedByUserID = deref(claimedBy)
	lead.ProofURL = deref(proofURL)
	return &lead, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
