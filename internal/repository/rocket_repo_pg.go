package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	insertRocketSQL = `INSERT INTO rockets (id, name, capacity, speed, rocket_range)
		VALUES ('r' || lpad(nextval('rockets_seq')::text, 4, '0'), $1, $2, $3, $4)
		RETURNING id`
	selectRocketsSQL    = `SELECT id, name, capacity, speed, rocket_range FROM rockets ORDER BY length(id), id`
	selectRocketByIDSQL = `SELECT id, name, capacity, speed, rocket_range FROM rockets WHERE id = $1`
)

type PGRocketRepository struct {
	db DBConn
}

func NewPGRocketRepository(db DBConn) *PGRocketRepository {
	return &PGRocketRepository{db: db}
}

func (r *PGRocketRepository) Add(ctx context.Context, rocket domain.Rocket) (domain.Rocket, error) {
	rocket = rocket.Clone()
	if err := r.db.QueryRow(ctx, insertRocketSQL, rocket.Name, rocket.Capacity, rocket.Speed, rocket.Range).Scan(&rocket.ID); err != nil {
		return domain.Rocket{}, fmt.Errorf("insert rocket: %w", err)
	}
	return rocket, nil
}

func (r *PGRocketRepository) List(ctx context.Context) ([]domain.Rocket, error) {
	rows, err := r.db.Query(ctx, selectRocketsSQL)
	if err != nil {
		return nil, fmt.Errorf("list rockets: %w", err)
	}
	defer rows.Close()

	rockets := make([]domain.Rocket, 0)
	for rows.Next() {
		var rocket domain.Rocket
		if err := rows.Scan(&rocket.ID, &rocket.Name, &rocket.Capacity, &rocket.Speed, &rocket.Range); err != nil {
			return nil, fmt.Errorf("scan rocket: %w", err)
		}
		rockets = append(rockets, rocket)
	}
	return rockets, rows.Err()
}

func (r *PGRocketRepository) GetByID(ctx context.Context, id string) (domain.Rocket, error) {
	var rocket domain.Rocket
	err := r.db.QueryRow(ctx, selectRocketByIDSQL, id).
		Scan(&rocket.ID, &rocket.Name, &rocket.Capacity, &rocket.Speed, &rocket.Range)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Rocket{}, ErrNotFound
	}
	if err != nil {
		return domain.Rocket{}, fmt.Errorf("get rocket %s: %w", id, err)
	}
	return rocket, nil
}

var _ RocketRepository = (*PGRocketRepository)(nil)
