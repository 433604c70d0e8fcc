package repositories

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

const (
	defaultRouteListLimit = 50
	maxRouteListLimit     = 500
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct {
	DB   *sql.DB
	goqu *goqu.Database
}

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db, goqu: goqu.New("postgres", db)}
}

type routeRow struct {
	ID               int64     `db:"id"`
	RouteDate        time.Time `db:"route_date"`
	TotalDistanceKm  float64   `db:"total_distance_km"`
	TotalDurationMin int       `db:"total_duration_min"`
	ContainerCount   int       `db:"container_count"`
	ContainerIDs     []byte    `db:"container_ids"`
	Polyline         []byte    `db:"polyline"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r routeRow) toDomain() (domain.RouteRecord, error) {
	rec := domain.RouteRecord{
		ID:               r.ID,
		RouteDate:        r.RouteDate,
		TotalDistanceKm:  r.TotalDistanceKm,
		TotalDurationMin: r.TotalDurationMin,
		ContainerCount:   r.ContainerCount,
		Status:           domain.RouteStatus(r.Status),
		CreatedAt:        r.CreatedAt,
	}
	if err := json.Unmarshal(r.ContainerIDs, &rec.ContainerIDs); err != nil {
		return domain.RouteRecord{}, fmt.Errorf("decode container_ids of route %d: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.Polyline, &rec.Polyline); err != nil {
		return domain.RouteRecord{}, fmt.Errorf("decode polyline of route %d: %w", r.ID, err)
	}
	return rec, nil
}

var routeColumns = []any{
	"id", "route_date", "total_distance_km", "total_duration_min",
	"container_count", "container_ids", "polyline", "status", "created_at",
}

type totalsRow struct {
	Routes            int     `db:"routes"`
	DistanceKm        float64 `db:"distance_km"`
	FuelSavedL        float64 `db:"fuel_saved_l"`
	CO2SavedKg        float64 `db:"co2_saved_kg"`
	CostSaved         float64 `db:"cost_saved"`
	TimeSavedMin      float64 `db:"time_saved_min"`
	EfficiencyGainPct float64 `db:"efficiency_gain_pct"`
}

func (t totalsRow) toDomain() domain.SavingsTotals {
	return domain.SavingsTotals{
		Routes:            t.Routes,
		DistanceKm:        t.DistanceKm,
		FuelSavedL:        t.FuelSavedL,
		CO2SavedKg:        t.CO2SavedKg,
		CostSaved:         t.CostSaved,
		TimeSavedMin:      t.TimeSavedMin,
		EfficiencyGainPct: t.EfficiencyGainPct,
	}
}

type periodRow struct {
	Period            time.Time `db:"period"`
	Routes            int       `db:"routes"`
	DistanceKm        float64   `db:"distance_km"`
	FuelSavedL        float64   `db:"fuel_saved_l"`
	CO2SavedKg        float64   `db:"co2_saved_kg"`
	CostSaved         float64   `db:"cost_saved"`
	TimeSavedMin      float64   `db:"time_saved_min"`
	EfficiencyGainPct float64   `db:"efficiency_gain_pct"`
}

func (r periodRow) toDomain() domain.PeriodSavings {
	return domain.PeriodSavings{
		Period: r.Period,
		SavingsTotals: totalsRow{
			Routes:            r.Routes,
			DistanceKm:        r.DistanceKm,
			FuelSavedL:        r.FuelSavedL,
			CO2SavedKg:        r.CO2SavedKg,
			CostSaved:         r.CostSaved,
			TimeSavedMin:      r.TimeSavedMin,
			EfficiencyGainPct: r.EfficiencyGainPct,
		}.toDomain(),
	}
}

// Insert a route record and return its generated id.
func (p *PostgresRouteRepository) InsertRoute(ctx context.Context, rec domain.RouteRecord) (_ int64, err error) {
	defer obs.Time(ctx, "routes.InsertRoute")(&err)

	if p.DB == nil {
		return 0, errors.New("postgres route repository: DB is nil")
	}

	q, err := p.insertRouteQuery(rec)
	if err != nil {
		return 0, err
	}

	var id int64
	if _, err := q.Executor().ScanValContext(ctx, &id); err != nil {
		return 0, fmt.Errorf("insert route: %w", err)
	}
	return id, nil
}

func (p *PostgresRouteRepository) insertRouteQuery(rec domain.RouteRecord) (*goqu.InsertDataset, error) {
	ids := rec.ContainerIDs
	if ids == nil {
		ids = []int{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("insert route: encode container_ids: %w", err)
	}

	line := rec.Polyline
	if line == nil {
		line = []domain.LngLat{}
	}
	lineJSON, err := json.Marshal(line)
	if err != nil {
		return nil, fmt.Errorf("insert route: encode polyline: %w", err)
	}

	status := rec.Status
	if status == "" {
		status = domain.StatusPlanned
	}
	if !status.Valid() {
		return nil, fmt.Errorf("insert route: invalid status %q", status)
	}

	return p.goqu.Insert("routes").
		Rows(goqu.Record{
			"route_date":         rec.RouteDate,
			"total_distance_km":  rec.TotalDistanceKm,
			"total_duration_min": rec.TotalDurationMin,
			"container_count":    rec.ContainerCount,
			"container_ids":      string(idsJSON),
			"polyline":           string(lineJSON),
			"status":             string(status),
		}).
		Returning("id"), nil
}

// Insert the savings record linked to an existing route.
func (p *PostgresRouteRepository) InsertSavings(ctx context.Context, s domain.SavingsRecord) (err error) {
	defer obs.Time(ctx, "routes.InsertSavings")(&err)

	if p.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}
	if s.RouteID <= 0 {
		return fmt.Errorf("insert savings: invalid route id %d", s.RouteID)
	}

	_, err = p.goqu.Insert("savings").
		Rows(goqu.Record{
			"route_id":            s.RouteID,
			"fuel_saved_l":        s.FuelSavedL,
			"co2_saved_kg":        s.CO2SavedKg,
			"cost_saved":          s.CostSaved,
			"time_saved_min":      s.TimeSavedMin,
			"efficiency_gain_pct": s.EfficiencyGainPct,
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert savings route_id=%d: %w", s.RouteID, err)
	}
	return nil
}

// Return the most recent routes, newest first.
func (p *PostgresRouteRepository) ListRoutes(ctx context.Context, limit int) (_ []domain.RouteRecord, err error) {
	defer obs.Time(ctx, "routes.ListRoutes")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	var rows []routeRow
	if err := p.listRoutesQuery(limit).ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	out := make([]domain.RouteRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *PostgresRouteRepository) listRoutesQuery(limit int) *goqu.SelectDataset {
	if limit <= 0 {
		limit = defaultRouteListLimit
	}
	limit = min(limit, maxRouteListLimit)

	return p.goqu.From("routes").
		Select(routeColumns...).
		Order(goqu.C("route_date").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit))
}

func (p *PostgresRouteRepository) GetRoute(ctx context.Context, id int64) (_ domain.RouteRecord, err error) {
	defer obs.Time(ctx, "routes.GetRoute")(&err)

	if p.DB == nil {
		return domain.RouteRecord{}, errors.New("postgres route repository: DB is nil")
	}

	var row routeRow
	found, err := p.goqu.From("routes").
		Select(routeColumns...).
		Where(goqu.C("id").Eq(id)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return domain.RouteRecord{}, fmt.Errorf("get route %d: %w", id, err)
	}
	if !found {
		return domain.RouteRecord{}, domain.ErrRouteNotFound
	}
	return row.toDomain()
}

// Move a route to next, enforcing the allowed status transitions under a
// row lock.
func (p *PostgresRouteRepository) UpdateRouteStatus(ctx context.Context, id int64, next domain.RouteStatus) (err error) {
	defer obs.Time(ctx, "routes.UpdateRouteStatus")(&err)

	if p.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}
	if !next.Valid() {
		return domain.NewInvalidInput("unknown route status %q", next)
	}

	tx, err := p.goqu.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update route status: begin tx: %w", err)
	}

	return tx.Wrap(func() error {
		var current string
		found, err := tx.From("routes").
			Select("status").
			Where(goqu.C("id").Eq(id)).
			ForUpdate(exp.Wait).
			ScanValContext(ctx, &current)
		if err != nil {
			return fmt.Errorf("update route status: lock route %d: %w", id, err)
		}
		if !found {
			return domain.ErrRouteNotFound
		}

		from := domain.RouteStatus(current)
		if !from.CanTransitionTo(next) {
			return &domain.StatusTransitionError{From: from, To: next}
		}

		_, err = tx.Update("routes").
			Set(goqu.Record{"status": string(next)}).
			Where(goqu.C("id").Eq(id)).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("update route status: route %d: %w", id, err)
		}
		return nil
	})
}

// Delete a route. Its savings record goes with it through the foreign key
// cascade.
func (p *PostgresRouteRepository) DeleteRoute(ctx context.Context, id int64) (err error) {
	defer obs.Time(ctx, "routes.DeleteRoute")(&err)

	if p.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}

	res, err := p.deleteRouteQuery(id).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete route %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete route %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (p *PostgresRouteRepository) deleteRouteQuery(id int64) *goqu.DeleteDataset {
	return p.goqu.Delete("routes").Where(goqu.C("id").Eq(id))
}

// Sum every savings record together with the distance of its route.
func (p *PostgresRouteRepository) SumSavings(ctx context.Context) (_ domain.SavingsTotals, err error) {
	defer obs.Time(ctx, "routes.SumSavings")(&err)

	if p.DB == nil {
		return domain.SavingsTotals{}, errors.New("postgres route repository: DB is nil")
	}

	var row totalsRow
	if _, err := p.sumSavingsQuery().ScanStructContext(ctx, &row); err != nil {
		return domain.SavingsTotals{}, fmt.Errorf("sum savings: %w", err)
	}
	return row.toDomain(), nil
}

// Savings totals bucketed by route date, oldest bucket first.
func (p *PostgresRouteRepository) SumSavingsByPeriod(ctx context.Context, g domain.Granularity) (_ []domain.PeriodSavings, err error) {
	defer obs.Time(ctx, "routes.SumSavingsByPeriod")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}
	if !g.Valid() {
		return nil, domain.NewInvalidInput("unknown granularity %q", g)
	}

	var rows []periodRow
	if err := p.sumSavingsByPeriodQuery(g).ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("sum savings by %s: %w", g, err)
	}

	out := make([]domain.PeriodSavings, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func savingsAggregates() []any {
	sum := func(col string) exp.SQLFunctionExpression {
		return goqu.COALESCE(goqu.SUM(goqu.I(col)), 0)
	}
	return []any{
		goqu.COUNT(goqu.I("s.id")).As("routes"),
		sum("r.total_distance_km").As("distance_km"),
		sum("s.fuel_saved_l").As("fuel_saved_l"),
		sum("s.co2_saved_kg").As("co2_saved_kg"),
		sum("s.cost_saved").As("cost_saved"),
		sum("s.time_saved_min").As("time_saved_min"),
		goqu.COALESCE(goqu.AVG(goqu.I("s.efficiency_gain_pct")), 0).As("efficiency_gain_pct"),
	}
}

func (p *PostgresRouteRepository) savingsJoin() *goqu.SelectDataset {
	return p.goqu.From(goqu.T("savings").As("s")).
		InnerJoin(goqu.T("routes").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("s.route_id"))))
}

func (p *PostgresRouteRepository) sumSavingsQuery() *goqu.SelectDataset {
	return p.savingsJoin().Select(savingsAggregates()...)
}

func (p *PostgresRouteRepository) sumSavingsByPeriodQuery(g domain.Granularity) *goqu.SelectDataset {
	cols := append([]any{goqu.Func("date_trunc", string(g), goqu.I("r.route_date")).As("period")}, savingsAggregates()...)
	return p.savingsJoin().
		Select(cols...).
		GroupBy(goqu.I("period")).
		Order(goqu.I("period").Asc())
}
