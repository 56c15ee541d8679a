package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
	"foodgram/internal/relations"
	"foodgram/models"
)

type signupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128,nefield=CurrentPassword"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

func createUser(r *http.Request, req signupRequest) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashed),
	}

	if err := database.WithContext(r.Context()).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func loadUser(r *http.Request, id uint) (*models.User, error) {
	var user models.User
	if err := database.WithContext(r.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, domainerrors.Internal("unable to load user", err)
	}
	return &user, nil
}

// Signup registers a new account.
func Signup(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := payloads.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	taken := map[string]string{}
	var count int64
	if err := database.WithContext(r.Context()).Model(&models.User{}).Where("lower(email) = ?", strings.ToLower(req.Email)).Count(&count).Error; err != nil {
		writeError(w, r, domainerrors.Internal("unable to check existing user", err))
		return
	}
	if count > 0 {
		taken["email"] = "is already registered"
	}
	if err := database.WithContext(r.Context()).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		writeError(w, r, domainerrors.Internal("unable to check existing user", err))
		return
	}
	if count > 0 {
		taken["username"] = "is already taken"
	}
	if len(taken) > 0 {
		writeError(w, r, domainerrors.Validation("validation failed", taken))
		return
	}

	user, err := createUser(r, req)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(w, r, domainerrors.Conflict("user already exists"))
			return
		}
		writeError(w, r, domainerrors.Internal("unable to create user", err))
		return
	}

	applog.Debug(r.Context(), "user created via signup", "userID", user.ID)
	writeJSON(w, http.StatusCreated, newUserView(*user, false))
}

// ListUsers lists every user with the viewer's is_subscribed flag.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	var users []models.User
	if err := database.WithContext(r.Context()).Order("id asc").Find(&users).Error; err != nil {
		writeError(w, r, domainerrors.Internal("unable to load users", err))
		return
	}
	views, err := viewUsers(r.Context(), viewerID(r), users)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// UserDetail shows one user.
func UserDetail(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("user not found"))
		return
	}
	user, err := loadUser(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := viewUsers(r.Context(), viewerID(r), []models.User{*user})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views[0])
}

// Me shows the authenticated user.
func Me(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}
	user, err := loadUser(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(*user, false))
}

// SetPassword replaces the authenticated user's password after checking the
// current one.
func SetPassword(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}

	var req setPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := payloads.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := loadUser(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeError(w, r, domainerrors.Validation("validation failed", map[string]string{
			"current_password": "is incorrect",
		}))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, domainerrors.Internal("unable to hash password", err))
		return
	}
	if err := database.WithContext(r.Context()).Model(user).Update("password_hash", string(hashed)).Error; err != nil {
		writeError(w, r, domainerrors.Internal("unable to update password", err))
		return
	}

	applog.Debug(r.Context(), "password changed", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions lists the authors the user follows with a preview of their
// recipes, limited by the recipes_limit query parameter.
func Subscriptions(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	authors, err := toggles.Subscriptions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := viewSubscriptions(r.Context(), userID, authors, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Subscribe follows the author in the URL.
func Subscribe(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}
	authorID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("user not found"))
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := toggles.Add(r.Context(), relations.Subscription, userID, authorID); err != nil {
		writeError(w, r, err)
		return
	}

	author, err := loadUser(r, authorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := viewSubscriptions(r.Context(), userID, []models.User{*author}, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, views[0])
}

// Unsubscribe stops following the author in the URL.
func Unsubscribe(w http.ResponseWriter, r *http.Request) {
	toggleRemove(w, r, relations.Subscription, "user not found")
}

func recipesLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("recipes_limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, domainerrors.Validation("invalid query parameters", map[string]string{
			"recipes_limit": "must be a non-negative integer",
		})
	}
	return limit, nil
}

func toggleRemove(w http.ResponseWriter, r *http.Request, kind relations.Kind, missing string) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}
	targetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound(missing))
		return
	}
	if err := toggles.Remove(r.Context(), kind, userID, targetID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
