package booking

import (
	"context"
	"net/http"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"go.uber.org/zap"
)

// CreateSlot creates a slot owned by the calling coach
func (c *Client) CreateSlot(ctx context.Context, data models.CreateSlotData) (*models.APIResponse[models.Slot], error) {
	var out models.APIResponse[models.Slot]
	err := c.do(ctx, call{
		op:     "createSlot",
		method: http.MethodPost,
		path:   "/slots",
		body:   data,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUpcomingSlots lists the calling coach's upcoming slots
func (c *Client) GetUpcomingSlots(ctx context.Context, page models.PageRequest) (*models.Paginated[models.Slot], error) {
	return c.slotPage(ctx, "getUpcomingSlots", "/slots/upcoming", page)
}

// GetAvailableSlots lists the unbooked slots of a coach
func (c *Client) GetAvailableSlots(ctx context.Context, coachID string, page models.PageRequest) (*models.Paginated[models.Slot], error) {
	return c.slotPage(ctx, "getAvailableSlots", "/slots/available/"+coachID, page)
}

// GetUpcomingBookingsForStudent lists the calling student's booked slots
func (c *Client) GetUpcomingBookingsForStudent(ctx context.Context, page models.PageRequest) (*models.Paginated[models.Slot], error) {
	return c.slotPage(ctx, "getUpcomingBookingsForStudent", "/students/bookings", page)
}

// BookSlot books a slot for the calling student
func (c *Client) BookSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	var out models.Slot
	err := c.do(ctx, call{
		op:     "bookSlot",
		method: http.MethodPost,
		path:   "/slots/" + slotID + "/book",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSlotDetails returns a slot with coach and student contact fields
func (c *Client) GetSlotDetails(ctx context.Context, slotID string) (*models.SlotDetails, error) {
	var out models.SlotDetails
	err := c.do(ctx, call{
		op:     "getSlotDetails",
		method: http.MethodGet,
		path:   "/slots/" + slotID + "/details",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) slotPage(ctx context.Context, op, path string, page models.PageRequest) (*models.Paginated[models.Slot], error) {
	var out models.Paginated[models.Slot]
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   path,
		query:  pageQuery(page),
	}, &out)
	if err != nil {
		return nil, err
	}
	checkPage(op, &out)
	return &out, nil
}

// checkPage logs pages whose metadata disagrees with its contents. The page is
// still handed back as received.
func checkPage[T any](op string, p *models.Paginated[T]) {
	if p.Data == nil {
		p.Data = []T{}
	}
	if err := p.CheckInvariants(); err != nil {
		logger.Warn("Inconsistent page received",
			zap.String("operation", op),
			zap.Int("page", p.Page),
			zap.Int("page_size", p.PageSize),
			zap.Int("total_count", p.TotalCount),
			zap.Int("total_pages", p.TotalPages),
			zap.Error(err),
		)
	}
}
