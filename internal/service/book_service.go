package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/repo/postgres"
)

type BookService interface {
	Create(ctx context.Context, req *domain.CreateBookRequest) (*domain.Book, error)
	Get(ctx context.Context, id int64) (*domain.Book, error)
	Update(ctx context.Context, id int64, req *domain.UpdateBookRequest) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Book, error)
}

type bookService struct {
	bookRepo postgres.BookRepository
}

func NewBookService(bookRepo postgres.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

func (s *bookService) Create(ctx context.Context, req *domain.CreateBookRequest) (*domain.Book, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

func (s *bookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}
	return book, nil
}

func (s *bookService) Update(ctx context.Context, id int64, req *domain.UpdateBookRequest) (*domain.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}
	return book, nil
}

func (s *bookService) Delete(ctx context.Context, id int64) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (s *bookService) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	books, err := s.bookRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}
