package models

type QueryTextRequest struct {
	Question string `json:"question" binding:"required"`
}
