package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lifecarechoice/leadgate/internal/database"
	"github.com/lifecarechoice/leadgate/internal/models"
)

// LeadRepository is the durable system of record for accepted leads. Each
// lead is one row; inserts never rewrite existing records, so concurrent
// submissions cannot clobber each other.
type LeadRepository struct {
	db *database.DB
}

func NewLeadRepository(db *database.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `
	id, created_at, first_name, last_name, email, phone, zip, state,
	product_interest, best_time, message, gender, birth_date, tobacco,
	coverage, agent_license, experience, ip_address, user_agent, referrer,
	landing_url, utm_source, utm_medium, utm_campaign, utm_term,
	utm_content, gclid, fbclid, click_id
`

// Insert stores a lead and returns its id. An empty id gets a generated
// UUID; a zero CreatedAt is stamped with the current time.
func (r *LeadRepository) Insert(ctx context.Context, lead *models.Lead) (string, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
			$28, $29)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		lead.ID,
		lead.CreatedAt,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Zip,
		lead.State,
		lead.ProductInterest,
		lead.BestTime,
		lead.Message,
		lead.Gender,
		lead.BirthDate,
		lead.Tobacco,
		lead.Coverage,
		lead.AgentLicense,
		lead.Experience,
		lead.IPAddress,
		lead.UserAgent,
		lead.Referrer,
		lead.LandingURL,
		lead.UTMSource,
		lead.UTMMedium,
		lead.UTMCampaign,
		lead.UTMTerm,
		lead.UTMContent,
		lead.GCLID,
		lead.FBCLID,
		lead.ClickID,
	)
	if err != nil {
		return "", database.MapPostgresError(err)
	}

	return lead.ID, nil
}

// Query returns leads matching the filter, newest first, with offset/limit
// pagination applied after sorting.
func (r *LeadRepository) Query(ctx context.Context, filter models.LeadFilter) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}
	argN := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *filter.StartDate)
		argN++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argN)
		args = append(args, *filter.EndDate)
		argN++
	}
	if filter.Email != "" {
		query += fmt.Sprintf(" AND email = $%d", argN)
		args = append(args, filter.Email)
		argN++
	}
	if filter.ProductInterest != "" {
		query += fmt.Sprintf(" AND product_interest = $%d", argN)
		args = append(args, filter.ProductInterest)
		argN++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argN)
		args = append(args, filter.Limit)
		argN++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argN)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// GetByID returns the lead with the given id, or models.ErrNotFound.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	row := r.db.Pool.QueryRow(ctx, query, id)
	lead, err := scanLead(row)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return lead, nil
}

// DeleteByID removes a lead and reports whether one existed.
func (r *LeadRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the total number of stored leads.
func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var lead models.Lead
	err := row.Scan(
		&lead.ID,
		&lead.CreatedAt,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Phone,
		&lead.Zip,
		&lead.State,
		&lead.ProductInterest,
		&lead.BestTime,
		&lead.Message,
		&lead.Gender,
		&lead.BirthDate,
		&lead.Tobacco,
		&lead.Coverage,
		&lead.AgentLicense,
		&lead.Experience,
		&lead.IPAddress,
		&lead.UserAgent,
		&lead.Referrer,
		&lead.LandingURL,
		&lead.UTMSource,
		&lead.UTMMedium,
		&lead.UTMCampaign,
		&lead.UTMTerm,
		&lead.UTMContent,
		&lead.GCLID,
		&lead.FBCLID,
		&lead.ClickID,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
