package dto

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}
