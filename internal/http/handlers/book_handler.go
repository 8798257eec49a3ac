package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/http/response"
)

// ListBooks returns the catalog. Public.
func (h *Handlers) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	books, err := h.bookService.List(r.Context(), limit, offset)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, books)
}

// GetBook returns a single book. Public.
func (h *Handlers) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid book ID")
		return
	}

	book, err := h.bookService.Get(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, book)
}

// CreateBook adds a catalog entry (admin only).
func (h *Handlers) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	book, err := h.bookService.Create(r.Context(), &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Book added successfully",
		"book":    book,
	})
}

// UpdateBook edits a catalog entry (admin only).
func (h *Handlers) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid book ID")
		return
	}

	var req domain.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	book, err := h.bookService.Update(r.Context(), id, &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, book)
}

// DeleteBook removes a catalog entry (admin only).
func (h *Handlers) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid book ID")
		return
	}

	if err := h.bookService.Delete(r.Context(), id); err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
