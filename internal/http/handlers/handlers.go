package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/libris/internal/service"
)

type Handlers struct {
	authService         service.AuthService
	bookService         service.BookService
	reservationService  service.ReservationService
	notificationService service.NotificationService
}

func New(
	authService service.AuthService,
	bookService service.BookService,
	reservationService service.ReservationService,
	notificationService service.NotificationService,
) *Handlers {
	return &Handlers{
		authService:         authService,
		bookService:         bookService,
		reservationService:  reservationService,
		notificationService: notificationService,
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
