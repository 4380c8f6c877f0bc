package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwozniak/car-workshop/internal/queue"
	"github.com/jwozniak/car-workshop/internal/repository"
)

// CarHandler serves the car CRUD endpoints plus the brand/model reference
// lists. Every mutation is scoped to the authenticated owner.
type CarHandler struct {
	Cars   CarStore
	Events EventPublisher // optional
}

func NewCarHandler(cars CarStore, events EventPublisher) *CarHandler {
	return &CarHandler{Cars: cars, Events: events}
}

type carReq struct {
	BrandID               uint64  `json:"brand_id" validate:"required"`
	ModelID               uint64  `json:"model_id" validate:"required"`
	RegistrationNumber    string  `json:"registrationNumber" validate:"required"`
	FirstRegistrationDate string  `json:"firstRegistrationDate" validate:"required"`
	Icon                  *string `json:"icon"`
}

type carUpdateReq struct {
	ID uint64 `json:"id" validate:"required"`
	carReq
}

type carResp struct {
	ID                    uint64  `json:"id"`
	Brand                 string  `json:"brand"`
	Model                 string  `json:"model"`
	RegistrationNumber    string  `json:"registrationNumber"`
	FirstRegistrationDate string  `json:"firstRegistrationDate"`
	Icon                  *string `json:"icon"`
}

type brandResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type modelResp struct {
	ID      uint64 `json:"id"`
	BrandID uint64 `json:"brand_id"`
	Name    string `json:"name"`
}

// parseRegistrationDate accepts either a plain calendar date or a full
// timestamp and normalizes to the calendar date, which is what the DATE
// column stores.
func parseRegistrationDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// Add inserts a car owned by the authenticated user.
func (h *CarHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "errors": fieldErrors(err)})
	}
	regDate, err := parseRegistrationDate(req.FirstRegistrationDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid firstRegistrationDate"})
	}

	car := repository.Car{
		UserID:                userID,
		BrandID:               req.BrandID,
		ModelID:               req.ModelID,
		RegistrationNumber:    req.RegistrationNumber,
		FirstRegistrationDate: regDate,
		Icon:                  nullString(req.Icon),
	}
	id, err := h.Cars.Create(c.Request().Context(), &car)
	if err != nil {
		log.Printf("cars: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not add car"})
	}

	if h.Events != nil {
		ev := queue.CarAddedEvent{
			CarID:                 id,
			UserID:                userID,
			BrandID:               req.BrandID,
			ModelID:               req.ModelID,
			RegistrationNumber:    req.RegistrationNumber,
			FirstRegistrationDate: regDate.Format("2006-01-02"),
			AddedAt:               time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = h.Events.PublishCarAdded(context.Background(), ev) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Car added successfully"})
}

// Update rewrites a car's fields. The repository filters on both car id and
// owner id, so a foreign or missing car yields the same 404.
func (h *CarHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req carUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "errors": fieldErrors(err)})
	}
	regDate, err := parseRegistrationDate(req.FirstRegistrationDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid firstRegistrationDate"})
	}

	car := repository.Car{
		ID:                    req.ID,
		UserID:                userID,
		BrandID:               req.BrandID,
		ModelID:               req.ModelID,
		RegistrationNumber:    req.RegistrationNumber,
		FirstRegistrationDate: regDate,
		Icon:                  nullString(req.Icon),
	}
	if err := h.Cars.Update(c.Request().Context(), &car); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found or not authorized"})
		}
		log.Printf("cars: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not update car"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Car updated successfully"})
}

// Delete removes a car owned by the authenticated user.
func (h *CarHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Cars.Delete(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found or not authorized"})
		}
		log.Printf("cars: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not delete car"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Car deleted successfully"})
}

// List returns the authenticated user's cars with brand and model names
// resolved.
func (h *CarHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := h.Cars.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		log.Printf("cars: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list cars"})
	}

	out := make([]carResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, carResp{
			ID:                    r.ID,
			Brand:                 r.Brand,
			Model:                 r.Model,
			RegistrationNumber:    r.RegistrationNumber,
			FirstRegistrationDate: r.FirstRegistrationDate.Format("2006-01-02"),
			Icon:                  strPtr(r.Icon),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Brands returns the full brand list. Unauthenticated; cached.
func (h *CarHandler) Brands(c echo.Context) error {
	brands, err := h.Cars.ListBrands(c.Request().Context())
	if err != nil {
		log.Printf("cars: list brands failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list brands"})
	}
	out := make([]brandResp, 0, len(brands))
	for _, b := range brands {
		out = append(out, brandResp{ID: b.ID, Name: b.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// Models returns the models of one brand. Unauthenticated; cached.
func (h *CarHandler) Models(c echo.Context) error {
	brandID, err := strconv.ParseUint(c.Param("brand_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid brand_id"})
	}
	models, err := h.Cars.ListModelsByBrand(c.Request().Context(), brandID)
	if err != nil {
		log.Printf("cars: list models failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list models"})
	}
	out := make([]modelResp, 0, len(models))
	for _, m := range models {
		out = append(out, modelResp{ID: m.ID, BrandID: m.BrandID, Name: m.Name})
	}
	return c.JSON(http.StatusOK, out)
}
