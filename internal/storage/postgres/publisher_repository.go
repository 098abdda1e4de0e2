package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PublisherRepository struct {
	pool *pgxpool.Pool
}

func NewPublisherRepository(pool *pgxpool.Pool) *PublisherRepository {
	return &PublisherRepository{pool: pool}
}

func (r *PublisherRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PublisherRepository) CreatePublisher(ctx context.Context, pub domain.Publisher) (domain.Publisher, error) {
	const stmt = `
INSERT INTO publishers (name, api_key, allowed_cities, is_active)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := queryRow(ctx, r.pool, stmt,
		pub.Name,
		pub.APIKey,
		encodeCities(pub.AllowedCities),
		pub.Active,
	).Scan(&pub.ID)
	if err != nil {
		if name := uniqueConstraint(err); name != "" {
			// publishers_name_key or publishers_api_key_key; a generated
			// api_key colliding is not a caller error.
			if strings.Contains(name, "name") {
				return domain.Publisher{}, domain.ErrPublisherNameExists
			}
		}
		return domain.Publisher{}, fmt.Errorf("create publisher: %w", err)
	}
	return pub, nil
}

func (r *PublisherRepository) GetPublisher(ctx context.Context, id int64) (domain.Publisher, error) {
	const q = `
SELECT id, name, api_key, allowed_cities, is_active
FROM publishers
WHERE id = $1`
	return r.scanPublisher(queryRow(ctx, r.pool, q, id))
}

func (r *PublisherRepository) GetPublisherByKey(ctx context.Context, apiKey string) (domain.Publisher, error) {
	const q = `
SELECT id, name, api_key, allowed_cities, is_active
FROM publishers
WHERE api_key = $1`
	return r.scanPublisher(queryRow(ctx, r.pool, q, apiKey))
}

func (r *PublisherRepository) ListPublishers(ctx context.Context) ([]domain.Publisher, error) {
	const q = `
SELECT id, name, api_key, allowed_cities, is_active
FROM publishers
ORDER BY id ASC`
	rows, err := query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	defer rows.Close()

	var pubs []domain.Publisher
	for rows.Next() {
		var pub domain.Publisher
		var cities string
		if err := rows.Scan(&pub.ID, &pub.Name, &pub.APIKey, &cities, &pub.Active); err != nil {
			return nil, fmt.Errorf("scan publisher: %w", err)
		}
		pub.AllowedCities = decodeCities(cities)
		pubs = append(pubs, pub)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate publishers: %w", rows.Err())
	}
	return pubs, nil
}

func (r *PublisherRepository) SetPublisherActive(ctx context.Context, id int64, active bool) (domain.Publisher, error) {
	const stmt = `
UPDATE publishers
SET is_active = $2
WHERE id = $1
RETURNING id, name, api_key, allowed_cities, is_active`
	return r.scanPublisher(queryRow(ctx, r.pool, stmt, id, active))
}

func (r *PublisherRepository) scanPublisher(row pgx.Row) (domain.Publisher, error) {
	var pub domain.Publisher
	var cities string
	err := row.Scan(&pub.ID, &pub.Name, &pub.APIKey, &cities, &pub.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Publisher{}, domain.ErrPublisherNotFound
		}
		return domain.Publisher{}, fmt.Errorf("scan publisher: %w", err)
	}
	pub.AllowedCities = decodeCities(cities)
	return pub, nil
}

// Allowed cities persist as a comma-joined string; the set semantics live
// in domain.CityList and the string form never leaves this package.
func encodeCities(cities domain.CityList) string {
	return strings.Join(cities, ",")
}

func decodeCities(stored string) domain.CityList {
	return domain.NewCityList(strings.Split(stored, ","))
}
