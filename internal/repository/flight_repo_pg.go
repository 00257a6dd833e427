package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	insertFlightSQL = `INSERT INTO flights (id, rocket_id, launch_date, base_price, minimum_passengers, state)
		VALUES ('f' || lpad(nextval('flights_seq')::text, 4, '0'), $1, $2, $3, $4, $5)
		RETURNING id`
	selectFlightsSQL    = `SELECT id, rocket_id, launch_date, base_price, minimum_passengers, state FROM flights ORDER BY length(id), id`
	selectFlightByIDSQL = `SELECT id, rocket_id, launch_date, base_price, minimum_passengers, state FROM flights WHERE id = $1`
	updateFlightSQL     = `UPDATE flights SET state = $2 WHERE id = $1`
)

type PGFlightRepository struct {
	db DBConn
}

func NewPGFlightRepository(db DBConn) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Add(ctx context.Context, flight domain.Flight) (domain.Flight, error) {
	err := r.db.QueryRow(ctx, insertFlightSQL,
		flight.RocketID, flight.LaunchDate, flight.BasePrice, flight.MinimumPassengers, flight.State).
		Scan(&flight.ID)
	if err != nil {
		return domain.Flight{}, fmt.Errorf("insert flight: %w", err)
	}
	return flight, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, selectFlightsSQL)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.RocketID, &f.LaunchDate, &f.BasePrice, &f.MinimumPassengers, &f.State); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		f.LaunchDate = f.LaunchDate.UTC()
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (domain.Flight, error) {
	var f domain.Flight
	err := r.db.QueryRow(ctx, selectFlightByIDSQL, id).
		Scan(&f.ID, &f.RocketID, &f.LaunchDate, &f.BasePrice, &f.MinimumPassengers, &f.State)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Flight{}, ErrNotFound
	}
	if err != nil {
		return domain.Flight{}, fmt.Errorf("get flight %s: %w", id, err)
	}
	f.LaunchDate = f.LaunchDate.UTC()
	return f, nil
}

// Update persists the flight state, the only field that changes after creation.
func (r *PGFlightRepository) Update(ctx context.Context, flight domain.Flight) error {
	tag, err := r.db.Exec(ctx, updateFlightSQL, flight.ID, flight.State)
	if err != nil {
		return fmt.Errorf("update flight %s: %w", flight.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
