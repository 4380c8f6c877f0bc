package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// WorkshopHandler serves the read-only workshop directory.
type WorkshopHandler struct {
	Workshops WorkshopStore
}

func NewWorkshopHandler(ws WorkshopStore) *WorkshopHandler {
	return &WorkshopHandler{Workshops: ws}
}

type workshopResp struct {
	ID             uint64      `json:"id"`
	Name           string      `json:"name"`
	Address        addressResp `json:"address"`
	Image          *string     `json:"image"`
	Rate           float64     `json:"rate"`
	OpinionsNumber uint64      `json:"opinionsNumber"`
	Description    *string     `json:"description"`
}

// List returns all workshops with flat address columns reshaped into a
// nested object. No pagination or filtering; clients search the full set.
func (h *WorkshopHandler) List(c echo.Context) error {
	rows, err := h.Workshops.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("workshops: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not list workshops"})
	}

	out := make([]workshopResp, 0, len(rows))
	for _, w := range rows {
		out = append(out, workshopResp{
			ID:   w.ID,
			Name: w.Name,
			Address: addressResp{
				Street:     w.Street,
				City:       w.City,
				BuildingNo: w.BuildingNo,
				LocalNo:    strPtr(w.LocalNo),
				PostCode:   w.PostCode,
			},
			Image:          strPtr(w.Image),
			Rate:           w.Rate,
			OpinionsNumber: w.OpinionsNumber,
			Description:    strPtr(w.Description),
		})
	}
	return c.JSON(http.StatusOK, out)
}
