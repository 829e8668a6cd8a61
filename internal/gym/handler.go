package gym

import (
	"errors"
	"net/http"
	"strconv"

	"fitslot/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List gyms
// @Tags         gyms
// @Produce      json
// @Success      200 {array} gym.Gym
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.service.GetAllGyms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// @Summary      List trainers of a gym
// @Tags         gyms
// @Produce      json
// @Param        gymID path int true "Gym ID"
// @Success      200 {array} gym.Trainer
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /gyms/{gymID}/trainers [get]
func (h *Handler) ListTrainers(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil || gymID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	trainers, err := h.service.ListTrainers(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch trainers"})
		return
	}

	c.JSON(http.StatusOK, trainers)
}

// @Summary      List services offered by a trainer
// @Tags         trainers
// @Produce      json
// @Param        trainerID path int true "Trainer ID"
// @Success      200 {array} gym.Offering
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /trainers/{trainerID}/services [get]
func (h *Handler) ListTrainerServices(c *gin.Context) {
	trainerID, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil || trainerID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid trainer ID"})
		return
	}

	services, err := h.service.ListTrainerServices(c.Request.Context(), trainerID)
	if err != nil {
		if errors.Is(err, ErrTrainerNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, services)
}
