package models

import "time"

const (
	MinSatisfaction = 1
	MaxSatisfaction = 5
)

// SessionFeedback is a coach's feedback on a completed session
type SessionFeedback struct {
	ID           string    `json:"id"`
	SlotID       string    `json:"slotId"`
	Satisfaction int       `json:"satisfaction"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateSessionFeedback is the write-side subset of SessionFeedback
type CreateSessionFeedback struct {
	SlotID       string `json:"slotId" validate:"required"`
	Satisfaction int    `json:"satisfaction" validate:"min=1,max=5"`
	Notes        string `json:"notes" validate:"max=5000"`
}
