package repositories

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// Postgres-backed implementation of the ContainerRepository port.
type PostgresContainerRepository struct {
	DB   *sql.DB
	goqu *goqu.Database
}

func NewPostgresContainerRepository(db *sql.DB) *PostgresContainerRepository {
	return &PostgresContainerRepository{DB: db, goqu: goqu.New("postgres", db)}
}

type containerRow struct {
	ID        int     `db:"id"`
	UID       string  `db:"uid"`
	Name      string  `db:"name"`
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
	FillLevel float64 `db:"fill_level"`
	Active    bool    `db:"active"`
}

// Return active containers at or above threshold, fullest first.
func (c *PostgresContainerRepository) ListNeedingCollection(ctx context.Context, threshold float64) (_ []domain.Container, err error) {
	defer obs.Time(ctx, "containers.ListNeedingCollection")(&err)

	if c.DB == nil {
		return nil, errors.New("postgres container repository: DB is nil")
	}

	var rows []containerRow
	if err := c.needingCollectionQuery(threshold).ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list containers needing collection: %w", err)
	}
	return toContainers(rows), nil
}

// Return the containers with the given ids, active or not.
func (c *PostgresContainerRepository) ListByIDs(ctx context.Context, ids []int) (_ []domain.Container, err error) {
	defer obs.Time(ctx, "containers.ListByIDs")(&err)

	if c.DB == nil {
		return nil, errors.New("postgres container repository: DB is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []containerRow
	if err := c.byIDsQuery(ids).ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list containers by id: %w", err)
	}
	return toContainers(rows), nil
}

func toContainers(rows []containerRow) []domain.Container {
	containers := make([]domain.Container, 0, len(rows))
	for _, r := range rows {
		containers = append(containers, domain.Container{
			ID:        r.ID,
			UID:       r.UID,
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			FillLevel: r.FillLevel,
			Active:    r.Active,
		})
	}
	return containers
}

var containerColumns = []any{"id", "uid", "name", "latitude", "longitude", "fill_level", "active"}

func (c *PostgresContainerRepository) byIDsQuery(ids []int) *goqu.SelectDataset {
	return c.goqu.From("containers").
		Select(containerColumns...).
		Where(goqu.C("id").In(ids)).
		Order(goqu.C("id").Asc())
}

func (c *PostgresContainerRepository) needingCollectionQuery(threshold float64) *goqu.SelectDataset {
	return c.goqu.From("containers").
		Select(containerColumns...).
		Where(
			goqu.C("active").IsTrue(),
			goqu.C("fill_level").Gte(threshold),
		).
		Order(goqu.C("fill_level").Desc(), goqu.C("id").Asc())
}
