package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwozniak/car-workshop/internal/config"
	"github.com/jwozniak/car-workshop/internal/queue"
	"github.com/jwozniak/car-workshop/internal/repository"
	"github.com/jwozniak/car-workshop/internal/utils"
)

// AuthHandler bundles dependencies for registration, login, token refresh
// and profile/address management.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	Events EventPublisher // optional
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens TokenStore, events EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Events: events}
}

// ----- DTOs -----

type registerReq struct {
	Name       string  `json:"name" validate:"required"`
	Surname    string  `json:"surname" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	Street     string  `json:"street" validate:"required"`
	City       string  `json:"city" validate:"required"`
	BuildingNo string  `json:"buildingNo" validate:"required"`
	LocalNo    *string `json:"localNo"`
	PostCode   string  `json:"postCode" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type profileReq struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type addressReq struct {
	Street     string  `json:"street" validate:"required"`
	City       string  `json:"city" validate:"required"`
	BuildingNo string  `json:"buildingNo" validate:"required"`
	LocalNo    *string `json:"localNo"`
	PostCode   string  `json:"postCode" validate:"required"`
}

type addressResp struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	BuildingNo string  `json:"buildingNo"`
	LocalNo    *string `json:"localNo"`
	PostCode   string  `json:"postCode"`
}

// Register creates the user with a hashed password. Duplicate emails are
// rejected explicitly with 409 via the unique index on users.email.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "errors": fieldErrors(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := repository.User{
		Name:       strings.TrimSpace(req.Name),
		Surname:    strings.TrimSpace(req.Surname),
		Email:      req.Email,
		Street:     req.Street,
		City:       req.City,
		BuildingNo: req.BuildingNo,
		LocalNo:    nullString(req.LocalNo),
		PostCode:   req.PostCode,
	}
	uid, err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already registered"})
		}
		log.Printf("auth: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not register user"})
	}

	if h.Events != nil {
		ev := queue.UserRegisteredEvent{
			UserID:       uid,
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			Name:         u.Name,
			Surname:      u.Surname,
			City:         u.City,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = h.Events.PublishUserRegistered(context.Background(), ev) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// Login verifies credentials and returns a signed access token embedding the
// user id. Unknown email and wrong password produce the identical response
// so the endpoint leaks nothing about which part failed. Note: no refresh
// token is issued here; see the refresh endpoint.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email or password"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email or password"})
		}
		log.Printf("auth: lookup user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		log.Printf("auth: issue access token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"token": access.Token})
}

// Refresh exchanges a stored refresh token for a new access token and a
// rotated refresh token. Login does not issue refresh tokens, so only
// sessions that already hold one can use this endpoint.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid refresh token"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, h.Cfg.AccessTTLMin)
	if err != nil {
		log.Printf("auth: issue access token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "refresh failed"})
	}
	rotated, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		log.Printf("auth: issue refresh token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(rotated.Raw), rotated.Exp); err != nil {
		log.Printf("auth: store refresh token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "refresh failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":       access.Token,
		"expires_in":         access.Exp.Unix(),
		"refresh_token":      rotated.Raw,
		"refresh_expires_in": rotated.Exp.Unix(),
	})
}

// GetUser returns the profile fields of the authenticated user.
func (h *AuthHandler) GetUser(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		log.Printf("auth: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not load user"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"name":    u.Name,
		"surname": u.Surname,
		"email":   u.Email,
	})
}

// UpdateUser writes name, surname and email for the authenticated user.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "errors": fieldErrors(err)})
	}

	if err := h.Users.UpdateProfile(c.Request().Context(), userID, req.Name, req.Surname, req.Email); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already registered"})
		}
		log.Printf("auth: update user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User info updated successfully"})
}

// GetAddress returns the address fields of the authenticated user.
func (h *AuthHandler) GetAddress(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		log.Printf("auth: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not load address"})
	}

	return c.JSON(http.StatusOK, addressResp{
		Street:     u.Street,
		City:       u.City,
		BuildingNo: u.BuildingNo,
		LocalNo:    strPtr(u.LocalNo),
		PostCode:   u.PostCode,
	})
}

// UpdateAddress writes the address fields for the authenticated user.
func (h *AuthHandler) UpdateAddress(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "errors": fieldErrors(err)})
	}

	addr := repository.Address{
		Street:     req.Street,
		City:       req.City,
		BuildingNo: req.BuildingNo,
		LocalNo:    nullString(req.LocalNo),
		PostCode:   req.PostCode,
	}
	if err := h.Users.UpdateAddress(c.Request().Context(), userID, addr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		log.Printf("auth: update address failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update address"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User address updated successfully"})
}
