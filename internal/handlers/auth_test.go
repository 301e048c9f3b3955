package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/petbond/backend/internal/auth"
	"github.com/petbond/backend/internal/models"
	"github.com/petbond/backend/internal/repositories"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	if _, exists := s.users[user.Email]; exists {
		return repositories.ErrConflict
	}
	s.users[user.Email] = user
	return nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func newTestManager() *auth.Manager {
	return auth.NewManager(time.Minute, time.Hour, auth.NewInMemorySessionStore())
}

func dogPet() petRequest {
	return petRequest{Name: "Rex", Type: "dog", Breed: "Beagle", Age: "3", Color: "brown", ImageURL: "https://cdn.example.com/rex.jpg"}
}

func TestAuthHandlerSignUp(t *testing.T) {
	store := newInMemoryUserStore()
	handler := AuthHandler{Users: store, Sessions: newTestManager()}

	body, err := json.Marshal(signUpRequest{Name: "Test User", Email: "test@example.com", Password: "supersafe", Pet: dogPet()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
	if resp.User == nil || resp.User.Pet.Breed != "Beagle" {
		t.Fatalf("expected pet profile on response, got %+v", resp.User)
	}

	stored, err := store.FindByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersafe")) != nil {
		t.Fatal("stored password is not hashed")
	}
	if stored.Pet.Type != models.PetTypeDog || stored.Pet.Color != "brown" {
		t.Fatalf("expected pet profile to be stored, got %+v", stored.Pet)
	}
}

func TestAuthHandlerSignUpValidation(t *testing.T) {
	cases := []struct {
		name string
		req  signUpRequest
	}{
		{
			name: "missing name",
			req:  signUpRequest{Email: "a@example.com", Password: "supersafe", Pet: dogPet()},
		},
		{
			name: "short password",
			req:  signUpRequest{Name: "A", Email: "a@example.com", Password: "short", Pet: dogPet()},
		},
		{
			name: "dog without breed",
			req: signUpRequest{Name: "A", Email: "a@example.com", Password: "supersafe",
				Pet: petRequest{Name: "Rex", Type: "dog", Color: "brown"}},
		},
		{
			name: "cat without color",
			req: signUpRequest{Name: "A", Email: "a@example.com", Password: "supersafe",
				Pet: petRequest{Name: "Mio", Type: "cat", Breed: "Siamese"}},
		},
		{
			name: "bird without bird type",
			req: signUpRequest{Name: "A", Email: "a@example.com", Password: "supersafe",
				Pet: petRequest{Name: "Kiwi", Type: "bird"}},
		},
		{
			name: "unknown pet type",
			req: signUpRequest{Name: "A", Email: "a@example.com", Password: "supersafe",
				Pet: petRequest{Name: "Goldie", Type: "fish"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthHandler{Users: newInMemoryUserStore(), Sessions: newTestManager()}

			body, err := json.Marshal(tc.req)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.SignUp(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandlerSignUpBirdProfile(t *testing.T) {
	store := newInMemoryUserStore()
	handler := AuthHandler{Users: store, Sessions: newTestManager()}

	payload := signUpRequest{Name: "Bird Person", Email: "bird@example.com", Password: "supersafe",
		Pet: petRequest{Name: "Kiwi", Type: "bird", BirdType: "parakeet", Age: "1"}}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	stored, err := store.FindByEmail(context.Background(), "bird@example.com")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if stored.Pet.BirdType != "parakeet" || stored.Pet.Breed != "" {
		t.Fatalf("unexpected pet profile: %+v", stored.Pet)
	}
}

func TestAuthHandlerSignUpDuplicate(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["dup@example.com"] = models.User{ID: "user-1", Email: "dup@example.com"}
	handler := AuthHandler{Users: store, Sessions: newTestManager()}

	body, err := json.Marshal(signUpRequest{Name: "Dup", Email: "dup@example.com", Password: "supersafe", Pet: dogPet()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	store := newInMemoryUserStore()
	handler := AuthHandler{Users: store, Sessions: newTestManager()}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store.users["login@example.com"] = models.User{ID: "user-1", Email: "login@example.com", Password: string(hashed)}

	body, err := json.Marshal(loginRequest{Email: "login@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	store := newInMemoryUserStore()
	handler := AuthHandler{Users: store, Sessions: newTestManager()}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.users["login@example.com"] = models.User{ID: "user-1", Email: "login@example.com", Password: string(hashed)}

	body, err := json.Marshal(loginRequest{Email: "login@example.com", Password: "wrong-password"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestAuthHandlerLoginRateLimited(t *testing.T) {
	handler := AuthHandler{Users: newInMemoryUserStore(), Sessions: newTestManager(), Limiter: denyAllLimiter{}}

	body, err := json.Marshal(loginRequest{Email: "login@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
}

func TestAuthHandlerRefresh(t *testing.T) {
	manager := newTestManager()
	tokens, err := manager.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	handler := AuthHandler{Sessions: manager}

	body, err := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Tokens.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token to be issued")
	}
}

func TestAuthHandlerRefreshRejectsAccessToken(t *testing.T) {
	manager := newTestManager()
	tokens, err := manager.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	handler := AuthHandler{Sessions: manager}

	body, err := json.Marshal(refreshRequest{RefreshToken: tokens.AccessToken})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthHandlerPasswordReset(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["known@example.com"] = models.User{ID: "user-1", Email: "known@example.com"}
	handler := AuthHandler{Users: store, Sessions: newTestManager()}

	// The response must not reveal whether the account exists.
	for _, email := range []string{"known@example.com", "unknown@example.com"} {
		body, err := json.Marshal(passwordResetRequest{Email: email})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password-reset", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.RequestPasswordReset(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected status %d got %d for %s", http.StatusAccepted, rec.Code, email)
		}
	}
}
