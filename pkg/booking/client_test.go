package booking_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/internal/testutil/fakebackend"
	"github.com/cargoreligion/booking-client/pkg/booking"
	"github.com/cargoreligion/booking-client/pkg/errors"
	"github.com/cargoreligion/booking-client/pkg/httpclient"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coach   = models.User{ID: "c1", Name: "Coach", PhoneNumber: "111", Role: models.RoleCoach}
	student = models.User{ID: "s1", Name: "Student", PhoneNumber: "222", Role: models.RoleStudent}
)

func newTestClient(t *testing.T, opts ...booking.Option) (*booking.Client, *fakebackend.Server) {
	t.Helper()
	srv := fakebackend.NewServer(t)
	srv.AddUser(coach, student)
	opts = append([]booking.Option{booking.WithHTTPClient(httpclient.Wrap(srv.HTTP.Client()))}, opts...)
	return booking.NewClient(srv.URL, opts...), srv
}

func lastRequest(t *testing.T, srv *fakebackend.Server) fakebackend.Request {
	t.Helper()
	req, ok := srv.LastRequest()
	require.True(t, ok, "backend received no request")
	return req
}

func TestNewClient_Defaults(t *testing.T) {
	c := booking.NewClient("")
	assert.Equal(t, booking.DefaultBaseURL, c.BaseURL())
	assert.Equal(t, "", c.UserID())

	c = booking.NewClient("http://example.test/api/", booking.WithUserID("u1"))
	assert.Equal(t, "http://example.test/api", c.BaseURL())
	assert.Equal(t, "u1", c.UserID())
}

func TestClient_SetUserIDAppliesToLaterRequests(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	c.SetUserID(coach.ID)
	_, err := c.GetUpcomingSlots(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, coach.ID, lastRequest(t, srv).UserID)

	c.SetUserID(student.ID)
	_, err = c.GetUpcomingBookingsForStudent(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, student.ID, lastRequest(t, srv).UserID)
}

func TestClient_NoIdentityOmitsHeader(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.GetUpcomingSlots(context.Background(), models.PageRequest{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err))

	req := lastRequest(t, srv)
	assert.Empty(t, req.UserID)
	assert.Empty(t, req.Header.Values(booking.HeaderUserID))
}

func TestClient_InFlightRequestKeepsItsIdentity(t *testing.T) {
	arrived := make(chan string, 1)
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- r.Header.Get(booking.HeaderUserID)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := booking.NewClient(ts.URL, booking.WithHTTPClient(httpclient.Wrap(ts.Client())), booking.WithUserID("u1"))

	done := make(chan error, 1)
	go func() {
		_, err := c.GetPastSessionFeedbacks(context.Background())
		done <- err
	}()

	seen := <-arrived
	c.SetUserID("u2")
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, "u1", seen)
	assert.Equal(t, "u2", c.UserID())
}

func TestClient_ContextOverridesDefaultIdentity(t *testing.T) {
	c, srv := newTestClient(t, booking.WithUserID(coach.ID))

	ctx := booking.ContextWithUserID(context.Background(), student.ID)
	_, err := c.GetUpcomingBookingsForStudent(ctx, models.PageRequest{})
	require.NoError(t, err)

	assert.Equal(t, student.ID, lastRequest(t, srv).UserID)
	assert.Equal(t, coach.ID, c.UserID())
}

func TestClient_StandardHeaders(t *testing.T) {
	c, srv := newTestClient(t, booking.WithUserID(coach.ID))

	_, err := c.GetUpcomingSlots(context.Background(), models.PageRequest{})
	require.NoError(t, err)

	req := lastRequest(t, srv)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	_, err = uuid.Parse(req.RequestID)
	assert.NoError(t, err, "request id should be a uuid")
}

func TestClient_HTTPStatusError(t *testing.T) {
	c, srv := newTestClient(t, booking.WithUserID(student.ID))
	slot := srv.AddSlot(models.Slot{
		CoachID:   coach.ID,
		StartTime: time.Now().Add(24 * time.Hour),
		Booked:    true,
	})

	_, err := c.BookSlot(context.Background(), slot.ID)
	require.Error(t, err)

	var statusErr *errors.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "already booked")
	assert.False(t, errors.IsTransport(err))
}

func TestClient_NotFoundStatus(t *testing.T) {
	c, _ := newTestClient(t, booking.WithUserID(coach.ID))

	_, err := c.GetSlotDetails(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsHTTPStatus(err))
	assert.Equal(t, http.StatusNotFound, errors.StatusCode(err))
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := booking.NewClient(url, booking.WithUserID("u1"))
	_, err := c.GetAllUsers(context.Background())
	require.Error(t, err)

	var transportErr *errors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "getAllUsers", transportErr.Op)
	assert.Equal(t, url+"/users", transportErr.URL)
	assert.False(t, errors.IsHTTPStatus(err))
}

func TestClient_MalformedResponse(t *testing.T) {
	c, srv := newTestClient(t, booking.WithUserID(coach.ID))
	srv.RespondNext(http.StatusOK, `{"data": [`)

	_, err := c.GetUpcomingSlots(context.Background(), models.PageRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.True(t, errors.IsDecode(err))
	assert.Equal(t, 0, errors.StatusCode(err))
}

func TestClient_CountsRequestsByOutcome(t *testing.T) {
	c, srv := newTestClient(t)
	failed := metrics.APIClientRequestTotal.WithLabelValues("getAllUsers", "error")
	succeeded := metrics.APIClientRequestTotal.WithLabelValues("getAllUsers", "success")
	failedBefore, succeededBefore := testutil.ToFloat64(failed), testutil.ToFloat64(succeeded)

	srv.RespondNext(http.StatusInternalServerError, `{"error": "boom"}`)
	_, err := c.GetAllUsers(context.Background())
	require.Error(t, err)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
	assert.Equal(t, succeededBefore, testutil.ToFloat64(succeeded))

	_, err = c.GetAllUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
	assert.Equal(t, succeededBefore+1, testutil.ToFloat64(succeeded))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c, srv := newTestClient(t, booking.WithUserID(coach.ID), booking.WithRateLimit(0.001, 1))

	_, err := c.GetPastSessionFeedbacks(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.GetPastSessionFeedbacks(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Len(t, srv.Requests(), 1, "a paced call must not reach the backend")
}

func TestClient_RateLimitDisabled(t *testing.T) {
	c, srv := newTestClient(t, booking.WithUserID(coach.ID), booking.WithRateLimit(0, 0))

	for i := 0; i < 5; i++ {
		_, err := c.GetPastSessionFeedbacks(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, srv.Requests(), 5)
}
