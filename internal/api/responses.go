package api

type ErrorResponse struct {
	Error string `json:"error" example:"slot not found"`
}

type MessageResponse struct {
	Message string `json:"message" example:"reservation removed"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
