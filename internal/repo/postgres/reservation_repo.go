package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/libris/internal/domain"
)

type ReservationRepository interface {
	Create(ctx context.Context, userID int64, req *domain.CreateReservationRequest) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error)
	List(ctx context.Context, limit, offset int) ([]domain.Reservation, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

const reservationCols = `id, user_id, book_id, start_date, end_date, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.UserID, &res.BookID, &res.StartDate, &res.EndDate, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) Create(ctx context.Context, userID int64, req *domain.CreateReservationRequest) (*domain.Reservation, error) {
	const q = `
		INSERT INTO reservations (user_id, book_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + reservationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanReservation(r.pool.QueryRow(ctx, q, userID, req.BookID, req.StartDate, req.EndDate))
}

func (r *reservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanReservation(r.pool.QueryRow(ctx, q, id))
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	const q = `
		UPDATE reservations SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + reservationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanReservation(r.pool.QueryRow(ctx, q, id, status))
}

func (r *reservationRepository) List(ctx context.Context, limit, offset int) ([]domain.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	return r.queryList(ctx, q, clampLimit(limit), clampOffset(offset))
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		WHERE user_id = $3
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	return r.queryList(ctx, q, clampLimit(limit), clampOffset(offset), userID)
}

func (r *reservationRepository) queryList(ctx context.Context, q string, args ...any) ([]domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.BookID, &res.StartDate, &res.EndDate, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
