package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/http/handlers"
	mw "github.com/openshelf/libris/internal/http/middleware"
	"github.com/openshelf/libris/internal/repo/postgres"
	"github.com/openshelf/libris/internal/service"
	"github.com/openshelf/libris/pkg/auth"
	"github.com/openshelf/libris/pkg/config"
)

const testSecret = "test-secret"

// ---------- Mocks ----------

type mockUserRepo struct {
	nextID  int64
	users   map[int64]*domain.User
	byEmail map[string]int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User), byEmail: make(map[string]int64)}
}

func (m *mockUserRepo) Create(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.User, error) {
	id := m.nextID
	m.nextID++
	u := &domain.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[id] = u
	m.byEmail[req.Email] = id
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return m.users[id], nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) Update(_ context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	return u, nil
}

func (m *mockUserRepo) SetApproved(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.IsApproved = true
	return u, nil
}

func (m *mockUserRepo) SetAdmin(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.IsAdmin = true
	return u, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byEmail, u.Email)
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

type mockBookRepo struct {
	nextID int64
	books  map[int64]*domain.Book
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{nextID: 1, books: make(map[int64]*domain.Book)}
}

func (m *mockBookRepo) Create(_ context.Context, req *domain.CreateBookRequest) (*domain.Book, error) {
	id := m.nextID
	m.nextID++
	b := &domain.Book{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		PublishedOn: req.PublishedOn,
		Description: req.Description,
		Copies:      req.Copies,
	}
	m.books[id] = b
	return b, nil
}

func (m *mockBookRepo) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (m *mockBookRepo) Update(_ context.Context, id int64, req *domain.UpdateBookRequest) (*domain.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Copies != nil {
		b.Copies = *req.Copies
	}
	return b, nil
}

func (m *mockBookRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.books[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookRepo) List(_ context.Context, limit, offset int) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range m.books {
		out = append(out, *b)
	}
	return out, nil
}

type mockReservationRepo struct {
	nextID       int64
	reservations map[int64]*domain.Reservation
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{nextID: 1, reservations: make(map[int64]*domain.Reservation)}
}

func (m *mockReservationRepo) Create(_ context.Context, userID int64, req *domain.CreateReservationRequest) (*domain.Reservation, error) {
	id := m.nextID
	m.nextID++
	res := &domain.Reservation{
		ID:        id,
		UserID:    userID,
		BookID:    req.BookID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    domain.ReservationPending,
	}
	m.reservations[id] = res
	return res, nil
}

func (m *mockReservationRepo) FindByID(_ context.Context, id int64) (*domain.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	return res, nil
}

func (m *mockReservationRepo) UpdateStatus(_ context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	res.Status = status
	return res, nil
}

func (m *mockReservationRepo) List(_ context.Context, limit, offset int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range m.reservations {
		out = append(out, *res)
	}
	return out, nil
}

func (m *mockReservationRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range m.reservations {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

type mockNotificationRepo struct {
	nextID        int64
	notifications map[int64]*domain.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{nextID: 1, notifications: make(map[int64]*domain.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, userID int64, message string, kind domain.NotificationType) (*domain.Notification, error) {
	id := m.nextID
	m.nextID++
	n := &domain.Notification{ID: id, UserID: userID, Message: message, Type: kind, CreatedAt: time.Now()}
	m.notifications[id] = n
	return n, nil
}

func (m *mockNotificationRepo) FindByID(_ context.Context, id int64) (*domain.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id int64) (*domain.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, nil
	}
	n.IsRead = true
	return n, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

type mockPublisher struct{}

func (m *mockPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (m *mockPublisher) Close() error                                       { return nil }

// ---------- Fixture ----------

type fixture struct {
	router           *chi.Mux
	userRepo         *mockUserRepo
	bookRepo         *mockBookRepo
	reservationRepo  *mockReservationRepo
	notificationRepo *mockNotificationRepo
}

func newFixture() *fixture {
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret, AccessTokenTTL: time.Hour},
	}

	f := &fixture{
		userRepo:         newMockUserRepo(),
		bookRepo:         newMockBookRepo(),
		reservationRepo:  newMockReservationRepo(),
		notificationRepo: newMockNotificationRepo(),
	}

	bus := &mockPublisher{}
	authService := service.NewAuthService(f.userRepo, bus, cfg)
	bookService := service.NewBookService(f.bookRepo)
	reservationService := service.NewReservationService(f.reservationRepo, f.bookRepo, bus)
	notificationService := service.NewNotificationService(f.notificationRepo)

	h := handlers.New(authService, bookService, reservationService, notificationService)
	guard := mw.NewGuard(f.userRepo, testSecret)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.With(guard.RequireAdmin).Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.With(guard.RequireAdmin).Put("/{id}/approve", h.ApproveUser)
			r.With(guard.RequireAdmin).Put("/{id}/promote", h.PromoteUser)
			r.With(guard.RequireAdmin).Delete("/{id}", h.DeleteUser)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.ListBooks)
			r.Get("/{id}", h.GetBook)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireAuth, guard.RequireAdmin)
				r.Post("/", h.CreateBook)
				r.Put("/{id}", h.UpdateBook)
				r.Delete("/{id}", h.DeleteBook)
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(guard.RequireAuth, guard.RequireApproved)
			r.Post("/", h.CreateReservation)
			r.With(guard.RequireAdmin).Get("/", h.ListReservations)
			r.Get("/mine", h.ListMyReservations)
			r.Get("/{id}", h.GetReservation)
			r.With(guard.RequireAdmin).Put("/{id}", h.UpdateReservation)
			r.Delete("/{id}", h.CancelReservation)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(guard.RequireAuth, guard.RequireApproved)
			r.Get("/", h.ListNotifications)
			r.Put("/{id}/read", h.MarkNotificationRead)
		})
	})

	f.router = r
	return f
}

// seedUser creates a user directly in the store with password "password123".
func (f *fixture) seedUser(t *testing.T, email string, approved, admin bool) *domain.User {
	t.Helper()
	hash, err := argon2id.CreateHash("password123", argon2id.DefaultParams)
	require.NoError(t, err)

	u, err := f.userRepo.Create(context.Background(), &domain.RegisterRequest{
		Name:  "Seeded User",
		Email: email,
		Phone: "01010101010",
	}, hash)
	require.NoError(t, err)
	u.IsApproved = approved
	u.IsAdmin = admin
	return u
}

func (f *fixture) tokenFor(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := auth.NewAccessToken(u.ID, u.Email, u.IsAdmin, u.IsApproved, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ---------- Auth routes ----------

func TestRegisterReturnsTokenAndUserID(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":        "Test User",
		"email":       "test@example.com",
		"password":    "password123",
		"phoneNumber": "01010101010",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.NotEmpty(t, body["token"])
	require.NotZero(t, body["userId"])
}

func TestApprovalWorkflow(t *testing.T) {
	f := newFixture()
	admin := f.seedUser(t, "admin@example.com", true, true)
	adminToken := f.tokenFor(t, admin)

	// Register
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":        "Test User",
		"email":       "a@x.com",
		"password":    "password123",
		"phoneNumber": "01010101010",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	userID := int64(decodeBody(t, rec)["userId"].(float64))

	// Login before approval
	rec = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Your account is pending approval", decodeBody(t, rec)["message"])

	// Wrong password
	rec = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrongpassword",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])

	// Admin approves
	rec = f.do(t, http.MethodPut, "/api/users/2/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["isApproved"])

	// Approve again: idempotent
	rec = f.do(t, http.MethodPut, "/api/users/2/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["isApproved"])

	// Login after approval
	rec = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	claims, err := auth.Parse(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, userID, claims.Sub)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "taken@example.com", false, false)

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":        "Test User",
		"email":       "taken@example.com",
		"password":    "password123",
		"phoneNumber": "01010101010",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "EMAIL_EXISTS", decodeBody(t, rec)["code"])
}

// ---------- User routes ----------

func TestListUsersAdminOnly(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "user@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	rec := f.do(t, http.MethodGet, "/api/users", f.tokenFor(t, user), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
}

func TestListUsersRequiresToken(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	bob := f.seedUser(t, "bob@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	// Self
	rec := f.do(t, http.MethodGet, "/api/users/1", f.tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice@example.com", decodeBody(t, rec)["email"])

	// Another user
	rec = f.do(t, http.MethodGet, "/api/users/1", f.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Admin
	rec = f.do(t, http.MethodGet, "/api/users/1", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Admin, unknown id
	rec = f.do(t, http.MethodGet, "/api/users/99", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUserSelfOnly(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	bob := f.seedUser(t, "bob@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	// Another user's profile
	rec := f.do(t, http.MethodPut, "/api/users/1", f.tokenFor(t, bob), map[string]string{"name": "Hacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Even admins may not edit someone else's profile.
	rec = f.do(t, http.MethodPut, "/api/users/1", f.tokenFor(t, admin), map[string]string{"name": "Hacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Own profile: only name and phone change, credentials and flags never
	// appear in the response.
	rec = f.do(t, http.MethodPut, "/api/users/1", f.tokenFor(t, alice), map[string]string{
		"name":        "Alice Updated",
		"phoneNumber": "02020202020",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Alice Updated", body["name"])
	require.Equal(t, "02020202020", body["phone"])
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "passwordHash")
}

func TestPromoteUserAdminOnly(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "user@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	rec := f.do(t, http.MethodPut, "/api/users/1/promote", f.tokenFor(t, user), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/users/1/promote", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["isAdmin"])
}

func TestDeleteUserAdminOnly(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "user@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	rec := f.do(t, http.MethodDelete, "/api/users/1", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/users/1", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------- Book routes ----------

func TestBooksPublicRead(t *testing.T) {
	f := newFixture()
	book, err := f.bookRepo.Create(context.Background(), &domain.CreateBookRequest{
		Title: "Book One", Author: "Author One", Copies: 1,
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = f.do(t, http.MethodGet, "/api/books/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, book.Title, decodeBody(t, rec)["title"])

	rec = f.do(t, http.MethodGet, "/api/books/99", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookAdminOnly(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "user@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	payload := map[string]interface{}{
		"title":           "Book Four",
		"author":          "Author Four",
		"publicationDate": time.Now().Format(time.RFC3339),
		"description":     "Description Four",
	}

	rec := f.do(t, http.MethodPost, "/api/books", "", payload)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/books", f.tokenFor(t, user), payload)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/books", f.tokenFor(t, admin), payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Book added successfully", decodeBody(t, rec)["message"])
}

func TestUpdateBookAdminOnly(t *testing.T) {
	f := newFixture()
	admin := f.seedUser(t, "admin@example.com", true, true)
	_, err := f.bookRepo.Create(context.Background(), &domain.CreateBookRequest{
		Title: "Book Five", Author: "Author Five", Copies: 1,
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/api/books/1", f.tokenFor(t, admin), map[string]string{
		"title":  "Updated Book Five",
		"author": "Updated Author Five",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Updated Book Five", decodeBody(t, rec)["title"])
}

// ---------- Reservation routes ----------

func TestCreateReservation(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "user@example.com", true, false)
	_, err := f.bookRepo.Create(context.Background(), &domain.CreateBookRequest{
		Title: "Book One", Author: "Author One", Copies: 1,
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/reservations", f.tokenFor(t, user), map[string]interface{}{
		"book":      1,
		"startDate": time.Now().Format(time.RFC3339),
		"endDate":   time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Reservation created successfully", decodeBody(t, rec)["message"])
}

func TestCreateReservationRequiresApproval(t *testing.T) {
	f := newFixture()
	pending := f.seedUser(t, "pending@example.com", false, false)

	rec := f.do(t, http.MethodPost, "/api/reservations", f.tokenFor(t, pending), map[string]interface{}{
		"book":      1,
		"startDate": time.Now().Format(time.RFC3339),
		"endDate":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Your account is pending approval", decodeBody(t, rec)["message"])
}

func TestReservationOwnerOrAdmin(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	bob := f.seedUser(t, "bob@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	_, err := f.bookRepo.Create(context.Background(), &domain.CreateBookRequest{
		Title: "Book One", Author: "Author One", Copies: 1,
	})
	require.NoError(t, err)
	_, err = f.reservationRepo.Create(context.Background(), alice.ID, &domain.CreateReservationRequest{
		BookID: 1, StartDate: time.Now(), EndDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/reservations/1", f.tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/reservations/1", f.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/reservations/1", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Listing all reservations is admin-only
	rec = f.do(t, http.MethodGet, "/api/reservations", f.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/reservations", f.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Own reservations
	rec = f.do(t, http.MethodGet, "/api/reservations/mine", f.tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
}

func TestUpdateReservationStatusAdminOnly(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	admin := f.seedUser(t, "admin@example.com", true, true)

	_, err := f.bookRepo.Create(context.Background(), &domain.CreateBookRequest{
		Title: "Book One", Author: "Author One", Copies: 1,
	})
	require.NoError(t, err)
	_, err = f.reservationRepo.Create(context.Background(), alice.ID, &domain.CreateReservationRequest{
		BookID: 1, StartDate: time.Now(), EndDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/api/reservations/1", f.tokenFor(t, alice), map[string]string{"status": "approved"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/reservations/1", f.tokenFor(t, admin), map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "approved", decodeBody(t, rec)["status"])
}

func TestCancelReservationOwner(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	bob := f.seedUser(t, "bob@example.com", true, false)

	_, err := f.bookRepo.Create(context.Background(), &domain.CreateBookRequest{
		Title: "Book One", Author: "Author One", Copies: 1,
	})
	require.NoError(t, err)
	_, err = f.reservationRepo.Create(context.Background(), alice.ID, &domain.CreateReservationRequest{
		BookID: 1, StartDate: time.Now(), EndDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodDelete, "/api/reservations/1", f.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/reservations/1", f.tokenFor(t, alice), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, domain.ReservationCanceled, f.reservationRepo.reservations[1].Status)
}

// ---------- Notification routes ----------

func TestNotificationsOwnOnly(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	bob := f.seedUser(t, "bob@example.com", true, false)

	_, err := f.notificationRepo.Create(context.Background(), alice.ID, "Your reservation has been approved.", domain.NotificationReservationStatus)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/notifications", f.tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = f.do(t, http.MethodGet, "/api/notifications", f.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	require.Empty(t, empty)
}

func TestMarkNotificationReadOwnerOnly(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice@example.com", true, false)
	bob := f.seedUser(t, "bob@example.com", true, false)

	_, err := f.notificationRepo.Create(context.Background(), alice.ID, "Your reservation has been approved.", domain.NotificationReservationStatus)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/api/notifications/1/read", f.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/notifications/1/read", f.tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["isRead"])
}

var _ postgres.UserRepository = (*mockUserRepo)(nil)
var _ postgres.BookRepository = (*mockBookRepo)(nil)
var _ postgres.ReservationRepository = (*mockReservationRepo)(nil)
var _ postgres.NotificationRepository = (*mockNotificationRepo)(nil)
