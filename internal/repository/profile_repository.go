package repository

import (
	"context"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// ProfileRepository handles financial profile database operations.
type ProfileRepository struct {
	db database.PGXDB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db database.PGXDB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create adds a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO profiles (name, base_currency, monthly_income_brl, monthly_income_eur)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, profile.Name, profile.BaseCurrency, profile.MonthlyIncomeBRL, profile.MonthlyIncomeEUR,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	return mapError("create profile", err)
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, name, base_currency, monthly_income_brl, monthly_income_eur, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.BaseCurrency, &p.MonthlyIncomeBRL, &p.MonthlyIncomeEUR,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError("get profile", err)
	}
	return &p, nil
}

// Update modifies an existing profile.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET
			name = $2,
			base_currency = $3,
			monthly_income_brl = $4,
			monthly_income_eur = $5,
			updated_at = NOW()
		WHERE id = $1
	`, profile.ID, profile.Name, profile.BaseCurrency, profile.MonthlyIncomeBRL, profile.MonthlyIncomeEUR)
	if err != nil {
		return mapError("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update profile", errNoRowsAffected)
	}
	return nil
}

// Delete removes a profile by ID.
func (r *ProfileRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	return mapError("delete profile", err)
}
