package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/astrobookings/internal/domain"
)

const (
	insertBookingSQL = `INSERT INTO bookings (id, flight_id, passenger_name, passenger_email, final_price)
		VALUES ('b' || lpad(nextval('bookings_seq')::text, 4, '0'), $1, $2, $3, $4)
		RETURNING id`
	countBookingsSQL = `SELECT count(*) FROM bookings WHERE flight_id = $1`
	listBookingsSQL  = `SELECT id, flight_id, passenger_name, passenger_email, final_price FROM bookings WHERE flight_id = $1 ORDER BY length(id), id`
)

type PGBookingRepository struct {
	db DBConn
}

func NewPGBookingRepository(db DBConn) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Add(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	err := r.db.QueryRow(ctx, insertBookingSQL,
		booking.FlightID, booking.PassengerName, booking.PassengerEmail, booking.FinalPrice).
		Scan(&booking.ID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	return booking, nil
}

func (r *PGBookingRepository) CountByFlightID(ctx context.Context, flightID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countBookingsSQL, flightID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings for %s: %w", flightID, err)
	}
	return count, nil
}

func (r *PGBookingRepository) ListByFlightID(ctx context.Context, flightID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, listBookingsSQL, flightID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", flightID, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.FlightID, &b.PassengerName, &b.PassengerEmail, &b.FinalPrice); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
