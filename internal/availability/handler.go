package availability

import (
	"errors"
	"net/http"
	"strconv"

	"fitslot/internal/api"
	"fitslot/internal/gym"
	"fitslot/internal/logger"
	"fitslot/internal/scheduling"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Weekly availability of a trainer
// @Tags         trainers
// @Produce      json
// @Param        trainerID path int true "Trainer ID"
// @Success      200 {array} availability.WindowView
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainers/{trainerID}/availability [get]
func (h *Handler) ListTrainerAvailability(c *gin.Context) {
	trainerID, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil || trainerID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid trainer ID"})
		return
	}

	windows, err := h.service.ListTrainerWindows(c.Request.Context(), trainerID)
	if err != nil {
		if errors.Is(err, gym.ErrTrainerNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch availability"})
		return
	}

	c.JSON(http.StatusOK, windows)
}

// @Summary      Trainers working on a date
// @Description  Active trainers with an availability window on the weekday of date, optionally limited to one service.
// @Tags         trainers
// @Produce      json
// @Param        date        query  string  true   "Date (YYYY-MM-DD)"
// @Param        service_id  query  int     false  "Service ID"
// @Success      200 {object} availability.AvailableTrainersResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainers/available [get]
func (h *Handler) ListAvailableTrainers(c *gin.Context) {
	date, err := scheduling.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, expected YYYY-MM-DD"})
		return
	}

	var serviceID int
	if raw := c.Query("service_id"); raw != "" {
		serviceID, err = strconv.Atoi(raw)
		if err != nil || serviceID <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
			return
		}
	}

	trainers, err := h.service.AvailableTrainers(c.Request.Context(), date, serviceID)
	if err != nil {
		logger.Error("failed to list available trainers", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch trainers"})
		return
	}

	c.JSON(http.StatusOK, AvailableTrainersResponse{
		Date:      date.Format(scheduling.DateLayout),
		DayOfWeek: date.Weekday().String(),
		Trainers:  trainers,
	})
}
