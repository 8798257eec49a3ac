package domain

import (
	"fmt"
	"strings"
	"time"
)

type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	PublishedOn time.Time `json:"publicationDate"`
	Description string    `json:"description"`
	Copies      int       `json:"copies"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateBookRequest struct {
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	PublishedOn time.Time `json:"publicationDate"`
	Description string    `json:"description"`
	Copies      int       `json:"copies"`
}

type UpdateBookRequest struct {
	Title       *string    `json:"title,omitempty"`
	Author      *string    `json:"author,omitempty"`
	PublishedOn *time.Time `json:"publicationDate,omitempty"`
	Description *string    `json:"description,omitempty"`
	Copies      *int       `json:"copies,omitempty"`
}

func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Description = strings.TrimSpace(r.Description)
	if r.Copies == 0 {
		r.Copies = 1
	}
}

func (r *CreateBookRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if r.Author == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	if r.Copies < 1 {
		return fmt.Errorf("%w: copies must be positive", ErrValidation)
	}
	return nil
}

func (r *UpdateBookRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if r.Author != nil && strings.TrimSpace(*r.Author) == "" {
		return fmt.Errorf("%w: author must not be empty", ErrValidation)
	}
	if r.Copies != nil && *r.Copies < 0 {
		return fmt.Errorf("%w: copies must not be negative", ErrValidation)
	}
	return nil
}
