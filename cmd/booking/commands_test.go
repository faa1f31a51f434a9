package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/internal/services"
	"github.com/cargoreligion/booking-client/internal/storage"
	"github.com/cargoreligion/booking-client/internal/store"
	"github.com/cargoreligion/booking-client/internal/testutil/fakebackend"
	"github.com/cargoreligion/booking-client/pkg/booking"
	"github.com/cargoreligion/booking-client/pkg/errors"
	"github.com/cargoreligion/booking-client/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cliCoach   = models.User{ID: "c1", Name: "Coach", PhoneNumber: "111", Role: models.RoleCoach}
	cliStudent = models.User{ID: "s1", Name: "Student", PhoneNumber: "222", Role: models.RoleStudent}
)

type harness struct {
	srv      *fakebackend.Server
	bridge   *storage.Bridge
	registry *CommandRegistry
	out      *bytes.Buffer
	errOut   *bytes.Buffer
}

// newHarness wires the CLI the way run does, over a shared in-memory bridge
func newHarness(t *testing.T, bridge *storage.Bridge, srv *fakebackend.Server) *harness {
	t.Helper()
	ctx := context.Background()

	client := booking.NewClient(srv.URL, booking.WithHTTPClient(httpclient.Wrap(srv.HTTP.Client())))
	session := services.NewSessionService(
		store.NewIdentityStore(bridge, client),
		store.NewDirectoryStore(bridge),
		client,
	)
	session.Bootstrap(ctx)

	h := &harness{srv: srv, bridge: bridge, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.registry = NewCommandRegistry(VersionInfo{Version: "test", Commit: "abc", Date: "today"}, h.out, h.errOut)
	registerCommands(h.registry, &app{ctx: ctx, session: session, api: client, out: h.out, errOut: h.errOut})
	return h
}

func setup(t *testing.T) *harness {
	t.Helper()
	srv := fakebackend.NewServer(t)
	srv.AddUser(cliCoach, cliStudent)
	return newHarness(t, storage.NewBridge(storage.NewMemoryBackend()), srv)
}

func (h *harness) exec(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	return h.registry.Execute(args)
}

func decodeOut[T any](t *testing.T, h *harness) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &v), h.out.String())
	return v
}

func TestCLI_HelpAndUnknown(t *testing.T) {
	h := setup(t)

	require.NoError(t, h.exec(t, "help"))
	assert.Contains(t, h.out.String(), "slots")
	assert.Contains(t, h.out.String(), "feedback")

	require.NoError(t, h.exec(t, "help", "slots"))
	assert.Contains(t, h.out.String(), "booking slots available <coach-id>")

	assert.Error(t, h.exec(t))
	assert.Error(t, h.exec(t, "nope"))
}

func TestCLI_Version(t *testing.T) {
	h := setup(t)
	require.NoError(t, h.exec(t, "version"))
	assert.Equal(t, "booking test (commit: abc, built: today)\n", h.out.String())
}

func TestCLI_UsersLoginWhoamiLogout(t *testing.T) {
	h := setup(t)

	require.NoError(t, h.exec(t, "users"))
	assert.Equal(t, []models.User{cliCoach, cliStudent}, decodeOut[[]models.User](t, h))

	last, _ := h.srv.LastRequest()
	assert.Equal(t, booking.DirectoryUserID, last.UserID)

	require.NoError(t, h.exec(t, "users", "--cached"))
	assert.Len(t, decodeOut[[]models.User](t, h), 2)

	err := h.exec(t, "whoami")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	require.NoError(t, h.exec(t, "login", "c1"))
	assert.Equal(t, cliCoach, decodeOut[models.User](t, h))

	require.NoError(t, h.exec(t, "whoami"))
	assert.Equal(t, cliCoach, decodeOut[models.User](t, h))

	require.NoError(t, h.exec(t, "logout"))
	assert.ErrorIs(t, h.exec(t, "whoami"), errors.ErrUnauthenticated)
}

func TestCLI_LoginRefreshesStaleDirectory(t *testing.T) {
	h := setup(t)

	require.NoError(t, h.exec(t, "login", "s1"))
	assert.Equal(t, cliStudent, decodeOut[models.User](t, h))

	err := h.exec(t, "login", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCLI_IdentitySurvivesRestart(t *testing.T) {
	h := setup(t)
	require.NoError(t, h.exec(t, "login", "c1"))

	restarted := newHarness(t, h.bridge, h.srv)
	require.NoError(t, restarted.exec(t, "slots", "upcoming"))

	last, _ := h.srv.LastRequest()
	assert.Equal(t, "c1", last.UserID)
}

func TestCLI_SlotLifecycle(t *testing.T) {
	h := setup(t)
	start := time.Now().UTC().Truncate(time.Hour).Add(72 * time.Hour)

	require.NoError(t, h.exec(t, "login", "c1"))
	require.NoError(t, h.exec(t, "slots", "create", "--start", start.Format(time.RFC3339)))

	require.NoError(t, h.exec(t, "slots", "upcoming", "--page", "1", "--page-size", "5"))
	page := decodeOut[models.Paginated[models.Slot]](t, h)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 5, page.PageSize)
	slotID := page.Data[0].ID

	last, _ := h.srv.LastRequest()
	assert.Equal(t, []string{"5"}, last.Query["pageSize"])

	require.NoError(t, h.exec(t, "login", "s1"))
	require.NoError(t, h.exec(t, "slots", "available", "c1"))
	available := decodeOut[models.Paginated[models.Slot]](t, h)
	require.Len(t, available.Data, 1)

	require.NoError(t, h.exec(t, "slots", "book", slotID))

	require.NoError(t, h.exec(t, "bookings"))
	bookings := decodeOut[models.Paginated[models.Slot]](t, h)
	require.Len(t, bookings.Data, 1)
	assert.Equal(t, slotID, bookings.Data[0].ID)

	require.NoError(t, h.exec(t, "slots", "details", slotID))
	details := decodeOut[models.SlotDetails](t, h)
	assert.Equal(t, "111", details.CoachPhoneNumber)
	assert.Equal(t, "Student", details.StudentName)

	err := h.exec(t, "slots", "book", slotID)
	require.Error(t, err)
	assert.True(t, errors.IsHTTPStatus(err))
}

func TestCLI_SlotsCreateValidation(t *testing.T) {
	h := setup(t)
	require.NoError(t, h.exec(t, "login", "c1"))

	err := h.exec(t, "slots", "create")
	require.Error(t, err)
	var verrs models.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	err = h.exec(t, "slots", "create", "--start", "tomorrow")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	assert.Error(t, h.exec(t, "slots"))
	assert.Error(t, h.exec(t, "slots", "cancel"))
	assert.Error(t, h.exec(t, "slots", "available"))
}

func TestCLI_Feedback(t *testing.T) {
	h := setup(t)
	sid := cliStudent.ID
	slot := h.srv.AddSlot(models.Slot{
		CoachID:   cliCoach.ID,
		StartTime: time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second),
		StudentID: &sid,
		Booked:    true,
	})

	require.NoError(t, h.exec(t, "login", "c1"))

	err := h.exec(t, "feedback", "create", "--slot", slot.ID, "--satisfaction", "9")
	require.Error(t, err)
	requestsBefore := len(h.srv.Requests())

	err = h.exec(t, "feedback", "create", "--slot", slot.ID, "--satisfaction", "0")
	require.Error(t, err)
	assert.Len(t, h.srv.Requests(), requestsBefore, "invalid feedback must not reach the backend")

	require.NoError(t, h.exec(t, "feedback", "create", "--slot", slot.ID, "--satisfaction", "5", "--notes", "great"))

	require.NoError(t, h.exec(t, "feedback", "past"))
	past := decodeOut[[]models.SessionFeedback](t, h)
	require.Len(t, past, 1)
	assert.Equal(t, 5, past[0].Satisfaction)

	require.NoError(t, h.exec(t, "feedback", "student", "s1"))
	assert.Len(t, decodeOut[[]models.SessionFeedback](t, h), 1)

	require.NoError(t, h.exec(t, "students"))
	assert.Equal(t, []models.User{cliStudent}, decodeOut[[]models.User](t, h))
}

func TestCLI_CommandsRequireIdentity(t *testing.T) {
	h := setup(t)

	for _, args := range [][]string{
		{"slots", "upcoming"},
		{"slots", "book", "x"},
		{"bookings"},
		{"feedback", "past"},
		{"students"},
	} {
		assert.ErrorIs(t, h.exec(t, args...), errors.ErrUnauthenticated, args)
	}
	assert.Empty(t, h.srv.Requests())
}

func TestCLI_CommandsCheckRole(t *testing.T) {
	h := setup(t)

	require.NoError(t, h.exec(t, "login", "s1"))
	requestsBefore := len(h.srv.Requests())
	for _, args := range [][]string{
		{"slots", "upcoming"},
		{"slots", "create", "--start", "2030-01-07T10:00:00Z"},
		{"feedback", "past"},
		{"feedback", "student", "s1"},
		{"students"},
	} {
		assert.ErrorIs(t, h.exec(t, args...), errors.ErrForbidden, args)
	}
	assert.Len(t, h.srv.Requests(), requestsBefore, "role checks run before any request")

	require.NoError(t, h.exec(t, "login", "c1"))
	requestsBefore = len(h.srv.Requests())
	for _, args := range [][]string{
		{"slots", "book", "x"},
		{"bookings"},
	} {
		assert.ErrorIs(t, h.exec(t, args...), errors.ErrForbidden, args)
	}
	assert.Len(t, h.srv.Requests(), requestsBefore, "role checks run before any request")
}
