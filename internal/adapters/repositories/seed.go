package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

type ContainerSeed struct {
	ID        int     `json:"id"`
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	FillLevel float64 `json:"fill_level"`
	Active    *bool   `json:"active"`
}

// Populate the containers table from a JSON file. Existing rows with the
// same id are updated. Returns the number of containers written.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	if db == nil {
		return 0, errors.New("seed containers: DB is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed containers: read %q: %w", jsonPath, err)
	}

	rows, err := parseContainerSeeds(bytes)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed containers: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO containers (id, uid, name, latitude, longitude, fill_level, active, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	ON CONFLICT (id) DO UPDATE
	SET uid = EXCLUDED.uid,
		name = EXCLUDED.name,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		fill_level = EXCLUDED.fill_level,
		active = EXCLUDED.active,
		updated_at = EXCLUDED.updated_at;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed containers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rows {
		if _, err := stmt.ExecContext(ctx, c.ID, c.UID, c.Name, c.Latitude, c.Longitude, c.FillLevel, *c.Active); err != nil {
			return 0, fmt.Errorf("seed containers: insert id=%d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed containers: commit tx: %w", err)
	}

	return len(rows), nil
}

func parseContainerSeeds(raw []byte) ([]ContainerSeed, error) {
	var data []ContainerSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("seed containers: parse json: %w", err)
	}

	seen := make(map[int]struct{}, len(data))
	rows := make([]ContainerSeed, 0, len(data))
	for i, item := range data {
		if item.ID <= 0 {
			return nil, fmt.Errorf("seed containers: invalid id at index %d: %d", i+1, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("seed containers: duplicate id %d at index %d", item.ID, i+1)
		}
		seen[item.ID] = struct{}{}

		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, fmt.Errorf("seed containers: item at index %d: name cannot be empty", i+1)
		}
		item.UID = strings.TrimSpace(item.UID)
		if item.UID == "" {
			item.UID = fmt.Sprintf("CNT-%04d", item.ID)
		}

		if math.IsNaN(item.Latitude) || item.Latitude < -90 || item.Latitude > 90 ||
			math.IsNaN(item.Longitude) || item.Longitude < -180 || item.Longitude > 180 {
			return nil, fmt.Errorf("seed containers: id=%d: coordinates out of range", item.ID)
		}
		if item.FillLevel < 0 || item.FillLevel > 100 {
			return nil, fmt.Errorf("seed containers: id=%d: fill_level must be within 0..100", item.ID)
		}

		if item.Active == nil {
			active := true
			item.Active = &active
		}
		rows = append(rows, item)
	}

	return rows, nil
}
