package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	// Reason is a stable machine-readable code for booking rejections and lifecycle errors.
	Reason string `json:"reason,omitempty" example:"trainer_busy"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
