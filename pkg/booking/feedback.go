package booking

import (
	"context"
	"net/http"

	"github.com/cargoreligion/booking-client/internal/models"
)

// CreateSessionFeedback records the calling coach's feedback on a past session
func (c *Client) CreateSessionFeedback(ctx context.Context, data models.CreateSessionFeedback) (*models.APIResponse[models.SessionFeedback], error) {
	var out models.APIResponse[models.SessionFeedback]
	err := c.do(ctx, call{
		op:     "createSessionFeedback",
		method: http.MethodPost,
		path:   "/session-feedback",
		body:   data,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPastSessionFeedbacks lists feedback on the calling coach's past sessions
func (c *Client) GetPastSessionFeedbacks(ctx context.Context) ([]models.SessionFeedback, error) {
	return c.feedbackList(ctx, "getPastSessionFeedbacks", "/session-feedback/past")
}

// GetSessionFeedbackForStudent lists feedback the calling coach left for a student
func (c *Client) GetSessionFeedbackForStudent(ctx context.Context, studentID string) ([]models.SessionFeedback, error) {
	return c.feedbackList(ctx, "getSessionFeedbackForStudent", "/session-feedback/students/"+studentID)
}

// GetStudentsWithSessions lists students who had sessions with the calling coach
func (c *Client) GetStudentsWithSessions(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := c.do(ctx, call{
		op:     "getStudentsWithSessions",
		method: http.MethodGet,
		path:   "/session-feedback/studentswithsessions",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) feedbackList(ctx context.Context, op, path string) ([]models.SessionFeedback, error) {
	out := []models.SessionFeedback{}
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   path,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
