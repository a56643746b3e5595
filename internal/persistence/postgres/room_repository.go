package postgres

import (
	"context"
	"fmt"

	"github.com/example/talk-scheduler/internal/persistence"
)

const roomColumns = "id, name, building, capacity, features, active, created_at, updated_at"

// ListRooms returns active rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE active
		ORDER BY lower(name) ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", mapError(err))
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var room persistence.Room
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.Building,
			&room.Capacity,
			&room.Features,
			&room.Active,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", mapError(err))
	}

	return rooms, nil
}

// GetRoom returns a room by id regardless of its active flag.
func (s *Store) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE id = $1
	`

	var room persistence.Room
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.Building,
		&room.Capacity,
		&room.Features,
		&room.Active,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return persistence.Room{}, fmt.Errorf("get room: %w", mapError(err))
	}

	return room, nil
}

// SeedRooms inserts the catalog once; it is a no-op when rooms already exist.
func (s *Store) SeedRooms(ctx context.Context, rooms []persistence.Room) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM rooms`).Scan(&count); err != nil {
		return fmt.Errorf("count rooms: %w", mapError(err))
	}
	if count > 0 {
		return nil
	}

	for _, room := range rooms {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO rooms (name, building, capacity, features, active) VALUES ($1, $2, $3, $4, $5)`,
			room.Name, room.Building, room.Capacity, room.Features, room.Active,
		)
		if err != nil {
			return fmt.Errorf("seed room %q: %w", room.Name, mapError(err))
		}
	}
	return nil
}
