package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/enaran74/defrag-tracker/internal/database"
	"github.com/enaran74/defrag-tracker/internal/models"
)

// PropertyRepository defines data access for properties.
type PropertyRepository interface {
	// Upsert inserts the property or, when the code already exists, updates
	// its name and external reference. Properties are never deleted.
	Upsert(ctx context.Context, p *models.Property) (*models.Property, error)

	// GetByCode returns nil, nil when no property with the code exists.
	GetByCode(ctx context.Context, code string) (*models.Property, error)

	// SetStateCode records the classified region for a property.
	SetStateCode(ctx context.Context, code, stateCode string) error

	// Deactivate clears the active flag; the row stays.
	Deactivate(ctx context.Context, code string) error

	// ListUnclassified returns active properties with no state code yet.
	ListUnclassified(ctx context.Context) ([]models.Property, error)
}

type propertyRepository struct {
	q database.Querier
}

// NewPropertyRepository creates a PropertyRepository bound to a pool or
// transaction.
func NewPropertyRepository(q database.Querier) PropertyRepository {
	return &propertyRepository{q: q}
}

const propertyColumns = `id, code, name, external_ref, state_code, active, created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.ExternalRef,
		&p.StateCode,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) Upsert(ctx context.Context, p *models.Property) (*models.Property, error) {
	query := `
		INSERT INTO properties (code, name, external_ref, state_code, active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			external_ref = EXCLUDED.external_ref,
			updated_at = now()
		RETURNING ` + propertyColumns

	saved, err := scanProperty(r.q.QueryRow(ctx, query, p.Code, p.Name, p.ExternalRef, p.StateCode))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert property %q: %w", p.Code, err)
	}
	return saved, nil
}

func (r *propertyRepository) GetByCode(ctx context.Context, code string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE code = $1`

	p, err := scanProperty(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %q: %w", code, err)
	}
	return p, nil
}

func (r *propertyRepository) SetStateCode(ctx context.Context, code, stateCode string) error {
	query := `UPDATE properties SET state_code = $2, updated_at = now() WHERE code = $1`

	tag, err := r.q.Exec(ctx, query, code, stateCode)
	if err != nil {
		return fmt.Errorf("failed to set state code for property %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property %q not found", code)
	}
	return nil
}

func (r *propertyRepository) Deactivate(ctx context.Context, code string) error {
	query := `UPDATE properties SET active = false, updated_at = now() WHERE code = $1`

	tag, err := r.q.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to deactivate property %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property %q not found", code)
	}
	return nil
}

func (r *propertyRepository) ListUnclassified(ctx context.Context) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties
		WHERE state_code IS NULL AND active ORDER BY code`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified properties: %w", err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	return properties, nil
}
