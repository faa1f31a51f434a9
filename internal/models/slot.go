package models

import "time"

// Slot represents a coach's bookable time slot.
// Booked and StudentID are reported by the backend independently; a
// response may arrive with one set and not the other.
type Slot struct {
	ID        string    `json:"id"`
	CoachID   string    `json:"coachId"`
	CoachName string    `json:"coachName"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	StudentID *string   `json:"studentId,omitempty"`
	Booked    bool      `json:"booked"`
}

// HasStudent returns true if the backend reported a student for the slot
func (s Slot) HasStudent() bool {
	return s.StudentID != nil && *s.StudentID != ""
}

// SlotDetails is the read-only single-slot projection with contact fields
type SlotDetails struct {
	Slot
	CoachPhoneNumber   string `json:"coachPhoneNumber"`
	StudentPhoneNumber string `json:"studentPhoneNumber"`
	StudentName        string `json:"studentName"`
}

// CreateSlotData is the payload for creating a slot
type CreateSlotData struct {
	StartTime time.Time `json:"startTime" validate:"required"`
}
