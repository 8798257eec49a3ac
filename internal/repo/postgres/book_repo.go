package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/libris/internal/domain"
)

type BookRepository interface {
	Create(ctx context.Context, req *domain.CreateBookRequest) (*domain.Book, error)
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	Update(ctx context.Context, id int64, req *domain.UpdateBookRequest) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Book, error)
}

type bookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

const bookCols = `id, title, author, published_on, description, copies, created_at, updated_at`

func scanBook(row pgx.Row) (*domain.Book, error) {
	var b domain.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.PublishedOn, &b.Description, &b.Copies, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) Create(ctx context.Context, req *domain.CreateBookRequest) (*domain.Book, error) {
	const q = `
		INSERT INTO books (title, author, published_on, description, copies)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + bookCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBook(r.pool.QueryRow(ctx, q, req.Title, req.Author, req.PublishedOn, req.Description, req.Copies))
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBook(r.pool.QueryRow(ctx, q, id))
}

func (r *bookRepository) Update(ctx context.Context, id int64, req *domain.UpdateBookRequest) (*domain.Book, error) {
	const q = `
		UPDATE books
		SET
			title = COALESCE($2, title),
			author = COALESCE($3, author),
			published_on = COALESCE($4, published_on),
			description = COALESCE($5, description),
			copies = COALESCE($6, copies),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + bookCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBook(r.pool.QueryRow(ctx, q, id, req.Title, req.Author, req.PublishedOn, req.Description, req.Copies))
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *bookRepository) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + bookCols + `
		FROM books
		ORDER BY title ASC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.PublishedOn, &b.Description, &b.Copies, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, rows.Err()
}
