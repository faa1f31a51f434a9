package fakebackend

import (
	"net/http"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (b *Backend) getUsers(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.User{}, b.users...))
}

func (b *Backend) createSlot(c *gin.Context) {
	var req models.CreateSlotData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	coach, ok := b.caller(c, models.RoleCoach)
	if !ok {
		return
	}
	if req.StartTime.Before(b.now()) {
		c.String(http.StatusBadRequest, "cannot create a slot in the past")
		return
	}
	end := req.StartTime.Add(SlotDuration)
	for _, s := range b.slots {
		if s.CoachID == coach.ID && s.StartTime.Before(end) && req.StartTime.Before(s.EndTime) {
			c.String(http.StatusConflict, "slot overlaps with an existing slot")
			return
		}
	}

	slot := models.Slot{
		ID:        uuid.NewString(),
		CoachID:   coach.ID,
		CoachName: coach.Name,
		StartTime: req.StartTime,
		EndTime:   end,
	}
	b.slots = append(b.slots, slot)
	c.JSON(http.StatusCreated, gin.H{"id": slot.ID})
}

func (b *Backend) getUpcomingSlots(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	coach, ok := b.caller(c, models.RoleCoach)
	if !ok {
		return
	}
	now := b.now()
	var out []models.Slot
	for _, s := range b.slots {
		if s.CoachID == coach.ID && s.EndTime.After(now) {
			out = append(out, s)
		}
	}
	paginate(c, out)
}

func (b *Backend) getAvailableSlots(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	coachID := c.Param("coachId")
	now := b.now()
	var out []models.Slot
	for _, s := range b.slots {
		if s.CoachID == coachID && !s.Booked && s.StartTime.After(now) {
			out = append(out, s)
		}
	}
	paginate(c, out)
}

func (b *Backend) bookSlot(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	student, ok := b.caller(c, models.RoleStudent)
	if !ok {
		return
	}
	i := b.slotIndex(c.Param("id"))
	if i < 0 {
		c.String(http.StatusNotFound, "slot with ID %s not found", c.Param("id"))
		return
	}
	slot := &b.slots[i]
	if slot.Booked {
		c.String(http.StatusConflict, "slot with ID %s is already booked", slot.ID)
		return
	}
	if slot.StartTime.Before(b.now()) {
		c.String(http.StatusBadRequest, "slot with ID %s is in the past and cannot be booked", slot.ID)
		return
	}

	id := student.ID
	slot.StudentID = &id
	slot.Booked = true
	c.Status(http.StatusOK)
}

func (b *Backend) getStudentBookings(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	student, ok := b.caller(c, models.RoleStudent)
	if !ok {
		return
	}
	now := b.now()
	var out []models.Slot
	for _, s := range b.slots {
		if s.StudentID != nil && *s.StudentID == student.ID && s.EndTime.After(now) {
			out = append(out, s)
		}
	}
	paginate(c, out)
}

func (b *Backend) getSlotDetails(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.slotIndex(c.Param("id"))
	if i < 0 {
		c.String(http.StatusNotFound, "slot with ID %s not found", c.Param("id"))
		return
	}
	slot := b.slots[i]
	caller := c.GetHeader("X-User-Id")
	if slot.CoachID != caller && (slot.StudentID == nil || *slot.StudentID != caller) {
		c.String(http.StatusForbidden, "user with ID %s is not authorized to view slot details", caller)
		return
	}

	details := models.SlotDetails{Slot: slot}
	if coach, ok := models.FindUser(b.users, slot.CoachID); ok {
		details.CoachPhoneNumber = coach.PhoneNumber
	}
	if slot.Booked && slot.StudentID != nil {
		if student, ok := models.FindUser(b.users, *slot.StudentID); ok {
			details.StudentName = student.Name
			details.StudentPhoneNumber = student.PhoneNumber
		}
	} else {
		details.StudentID = nil
	}
	c.JSON(http.StatusOK, details)
}

func (b *Backend) createFeedback(c *gin.Context) {
	var req models.CreateSessionFeedback
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if req.Satisfaction < models.MinSatisfaction || req.Satisfaction > models.MaxSatisfaction {
		c.String(http.StatusBadRequest, "Satisfaction must be between 1 and 5")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	coach, ok := b.caller(c, models.RoleCoach)
	if !ok {
		return
	}
	i := b.slotIndex(req.SlotID)
	if i < 0 {
		c.String(http.StatusInternalServerError, "error fetching slot: not found")
		return
	}
	slot := b.slots[i]
	if slot.CoachID != coach.ID || slot.StudentID == nil {
		c.String(http.StatusInternalServerError, "slot %s is not assigned to coach %s", slot.ID, coach.ID)
		return
	}

	b.feedback = append(b.feedback, feedbackRecord{
		SessionFeedback: models.SessionFeedback{
			ID:           uuid.NewString(),
			SlotID:       slot.ID,
			Satisfaction: req.Satisfaction,
			Notes:        req.Notes,
			CreatedAt:    b.now(),
		},
		coachID:   coach.ID,
		studentID: *slot.StudentID,
	})
	c.Status(http.StatusCreated)
}

func (b *Backend) getPastFeedback(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	coach, ok := b.caller(c, models.RoleCoach)
	if !ok {
		return
	}
	out := []models.SessionFeedback{}
	for _, f := range b.feedback {
		if f.coachID == coach.ID {
			out = append(out, f.SessionFeedback)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) getFeedbackForStudent(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	coach, ok := b.caller(c, models.RoleCoach)
	if !ok {
		return
	}
	studentID := c.Param("studentId")
	out := []models.SessionFeedback{}
	for _, f := range b.feedback {
		if f.coachID == coach.ID && f.studentID == studentID {
			out = append(out, f.SessionFeedback)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) getStudentsWithSessions(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	coach, ok := b.caller(c, models.RoleCoach)
	if !ok {
		return
	}
	now := b.now()
	seen := map[string]bool{}
	out := []models.User{}
	for _, s := range b.slots {
		if s.CoachID != coach.ID || s.StudentID == nil || !s.EndTime.Before(now) || seen[*s.StudentID] {
			continue
		}
		seen[*s.StudentID] = true
		if u, ok := models.FindUser(b.users, *s.StudentID); ok {
			out = append(out, u)
		}
	}
	c.JSON(http.StatusOK, out)
}
