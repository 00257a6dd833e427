package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by every store when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// RocketRepository stores rockets. Rockets never change once added.
type RocketRepository interface {
	Add(ctx context.Context, rocket domain.Rocket) (domain.Rocket, error)
	List(ctx context.Context) ([]domain.Rocket, error)
	GetByID(ctx context.Context, id string) (domain.Rocket, error)
}

// FlightRepository stores flights. Update replaces the stored flight with the
// same id and returns ErrNotFound when there is none.
type FlightRepository interface {
	Add(ctx context.Context, flight domain.Flight) (domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (domain.Flight, error)
	Update(ctx context.Context, flight domain.Flight) error
}

type BookingRepository interface {
	Add(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	CountByFlightID(ctx context.Context, flightID string) (int, error)
	ListByFlightID(ctx context.Context, flightID string) ([]domain.Booking, error)
}

// DBConn is the subset of pgxpool.Pool the Postgres stores use.
type DBConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	rocketIDPrefix  = "r"
	flightIDPrefix  = "f"
	bookingIDPrefix = "b"
)

func formatID(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// idLess orders ids by their sequence number, which keeps r10000 after r9999.
func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
