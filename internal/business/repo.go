package business

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	errx "github.com/sharpchat/server/internal/core/error"
	logx "github.com/sharpchat/server/pkg/logger"
)

// Repository is the read contract the routing core consumes. GetByID surfaces
// a missing business as an explicit 404-shaped error, distinct from upstream
// failures.
type Repository interface {
	GetByID(ctx context.Context, businessID string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Find(ctx context.Context, f Filter) ([]Record, error)
}

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repository {
	return &repo{db: db}
}

const recordColumns = `
	business_id, email, business_name, business_description, business_address,
	business_phone, business_email_address, business_category,
	coalesce(business_open_hours, ''), coalesce(business_open_days, ''),
	coalesce(business_website, ''), coalesce(extra_information, ''),
	coalesce(faqs, '[]'), coalesce(items, '[]')`

func (r *repo) GetByID(ctx context.Context, businessID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM businesses
		WHERE business_id = $1
	`, businessID)

	rec, err := scanRecord(row)
	if err != nil {
		if err != sql.ErrNoRows {
			logx.Error().Err(err).Str("business_id", businessID).Msg("failed to load business")
		}
		return nil, errx.WrapPostgres(err)
	}
	return rec, nil
}

func (r *repo) List(ctx context.Context) ([]Record, error) {
	return r.Find(ctx, Filter{})
}

func (r *repo) Find(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM businesses`
	args := []any{}
	where := ""

	if f.BusinessID != "" {
		args = append(args, f.BusinessID)
		where = fmt.Sprintf(" WHERE business_id = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		if where == "" {
			where = fmt.Sprintf(" WHERE business_category = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND business_category = $%d", len(args))
		}
	}
	query += where + " ORDER BY business_id ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logx.Error().Err(err).Msg("failed to list businesses")
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errx.WrapPostgres(err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var faqs, items []byte
	if err := row.Scan(
		&rec.BusinessID,
		&rec.LoginEmail,
		&rec.Name,
		&rec.Description,
		&rec.Address,
		&rec.Phone,
		&rec.PublicEmail,
		&rec.Category,
		&rec.OpenHours,
		&rec.OpenDays,
		&rec.Website,
		&rec.ExtraInfo,
		&faqs,
		&items,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(faqs, &rec.FAQs); err != nil {
		return nil, fmt.Errorf("decode faqs for %s: %w", rec.BusinessID, err)
	}
	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", rec.BusinessID, err)
	}
	return &rec, nil
}
