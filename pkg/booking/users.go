package booking

import (
	"context"
	"net/http"

	"github.com/cargoreligion/booking-client/internal/models"
)

// GetAllUsers lists every user. The listing is always requested under
// DirectoryUserID, whatever identity is active.
func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := c.do(ctx, call{
		op:     "getAllUsers",
		method: http.MethodGet,
		path:   "/users",
		userID: DirectoryUserID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
