package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/db/dbtest"
	"foodgram/models"
)

type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/healthz", Health)
	r.Post("/api/auth/login", Login)
	r.Post("/api/auth/logout", Logout)
	r.Get("/api/users", ListUsers)
	r.Post("/api/users", Signup)
	r.With(RequireAuthentication).Get("/api/users/me", Me)
	r.With(RequireAuthentication).Post("/api/users/set_password", SetPassword)
	r.With(RequireAuthentication).Get("/api/users/subscriptions", Subscriptions)
	r.Get("/api/users/{id}", UserDetail)
	r.With(RequireAuthentication).Post("/api/users/{id}/subscribe", Subscribe)
	r.With(RequireAuthentication).Delete("/api/users/{id}/subscribe", Unsubscribe)
	r.Get("/api/tags", ListTags)
	r.Get("/api/tags/{id}", TagDetail)
	r.Get("/api/ingredients", ListIngredients)
	r.Get("/api/ingredients/{id}", IngredientDetail)
	r.Get("/api/recipes", ListRecipes)
	r.With(RequireAuthentication).Post("/api/recipes", CreateRecipe)
	r.With(RequireAuthentication).Get("/api/recipes/download_shopping_cart", DownloadShoppingCart)
	r.Get("/api/recipes/{id}", RecipeDetail)
	r.With(RequireAuthentication).Put("/api/recipes/{id}", UpdateRecipe)
	r.With(RequireAuthentication).Patch("/api/recipes/{id}", UpdateRecipe)
	r.With(RequireAuthentication).Delete("/api/recipes/{id}", DeleteRecipe)
	r.With(RequireAuthentication).Post("/api/recipes/{id}/favorite", AddFavorite)
	r.With(RequireAuthentication).Delete("/api/recipes/{id}/favorite", RemoveFavorite)
	r.With(RequireAuthentication).Post("/api/recipes/{id}/shopping_cart", AddToShoppingCart)
	r.With(RequireAuthentication).Delete("/api/recipes/{id}/shopping_cart", RemoveFromShoppingCart)
	return r
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	sm := scs.New()
	Configure(sm, db, Settings{MaxValue: 32000, ShoppingListHeader: "Shopping list:"})
	t.Cleanup(func() {
		Configure(nil, nil, Settings{})
	})
	return &testEnv{t: t, db: db, handler: sm.LoadAndSave(newTestRouter())}
}

func (e *testEnv) createUser(email, username, password string) models.User {
	e.t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		e.t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Email: email, Username: username, FirstName: "First", LastName: "Last", PasswordHash: string(hashed)}
	if err := e.db.Create(&user).Error; err != nil {
		e.t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) do(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(email, password string) []*http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	if w.Code != http.StatusOK {
		e.t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		e.t.Fatal("expected session cookie after login")
	}
	return cookies
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Code    string            `json:"code"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	body := decodeBody[errorBody](t, w)
	if body.Code != code {
		t.Fatalf("expected code %q, got %q", code, body.Code)
	}
	return body
}
