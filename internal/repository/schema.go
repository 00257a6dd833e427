package repository

import (
	"context"
	"fmt"
)

// Ids are built from per-table sequences so they match the r0001/f0001/b0001
// shape the in-memory stores produce.
var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS rockets_seq`,
	`CREATE TABLE IF NOT EXISTS rockets (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		capacity     INTEGER NOT NULL CHECK (capacity BETWEEN 1 AND 10),
		speed        INTEGER,
		rocket_range TEXT NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS flights_seq`,
	`CREATE TABLE IF NOT EXISTS flights (
		id                 TEXT PRIMARY KEY,
		rocket_id          TEXT NOT NULL REFERENCES rockets (id),
		launch_date        TIMESTAMPTZ NOT NULL,
		base_price         DOUBLE PRECISION NOT NULL,
		minimum_passengers INTEGER NOT NULL,
		state              TEXT NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS bookings_seq`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id              TEXT PRIMARY KEY,
		flight_id       TEXT NOT NULL REFERENCES flights (id),
		passenger_name  TEXT NOT NULL,
		passenger_email TEXT NOT NULL,
		final_price     DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_flight_id_idx ON bookings (flight_id)`,
}

// Migrate creates the tables and sequences when they are missing.
func Migrate(ctx context.Context, db DBConn) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
