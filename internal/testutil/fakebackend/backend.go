// Package fakebackend is an in-memory scheduling service used by tests. It
// serves the same routes under /api and applies the same role rules, without
// a database.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SlotDuration is the length of every created slot
const SlotDuration = 2 * time.Hour

const maxPageSize = 10

// Request is one recorded inbound request
type Request struct {
	Method    string
	Path      string
	Query     map[string][]string
	UserID    string
	RequestID string
	Header    http.Header
}

type cannedResponse struct {
	status int
	body   string
}

// Backend holds the state of the fake service
type Backend struct {
	mu       sync.Mutex
	users    []models.User
	slots    []models.Slot
	feedback []feedbackRecord
	requests []Request
	canned   []cannedResponse
	now      func() time.Time
	router   *gin.Engine
}

type feedbackRecord struct {
	models.SessionFeedback
	coachID   string
	studentID string
}

// New creates an empty backend
func New() *Backend {
	gin.SetMode(gin.TestMode)

	b := &Backend{now: time.Now}

	r := gin.New()
	r.Use(b.record, b.replay, b.auth)

	api := r.Group("/api")
	api.GET("/users", b.getUsers)
	api.POST("/slots", b.createSlot)
	api.GET("/slots/upcoming", b.getUpcomingSlots)
	api.GET("/slots/available/:coachId", b.getAvailableSlots)
	api.POST("/slots/:id/book", b.bookSlot)
	api.GET("/slots/:id/details", b.getSlotDetails)
	api.GET("/students/bookings", b.getStudentBookings)
	api.POST("/session-feedback", b.createFeedback)
	api.GET("/session-feedback/past", b.getPastFeedback)
	api.GET("/session-feedback/students/:studentId", b.getFeedbackForStudent)
	api.GET("/session-feedback/studentswithsessions", b.getStudentsWithSessions)

	b.router = r
	return b
}

// Server is a running fake backend
type Server struct {
	*Backend
	HTTP *httptest.Server
	// URL is the API root, ending in /api
	URL string
}

// NewServer starts a backend on a local port and stops it when t finishes
func NewServer(t testing.TB) *Server {
	t.Helper()
	b := New()
	ts := httptest.NewServer(b.router)
	t.Cleanup(ts.Close)
	return &Server{Backend: b, HTTP: ts, URL: ts.URL + "/api"}
}

// ServeHTTP implements http.Handler
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// SetClock replaces the time source used for "upcoming" and "past"
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// AddUser seeds a user
func (b *Backend) AddUser(users ...models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, users...)
}

// AddSlot seeds a slot and returns it with its id filled in
func (b *Backend) AddSlot(slot models.Slot) models.Slot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.EndTime.IsZero() {
		slot.EndTime = slot.StartTime.Add(SlotDuration)
	}
	if u, ok := models.FindUser(b.users, slot.CoachID); ok && slot.CoachName == "" {
		slot.CoachName = u.Name
	}
	b.slots = append(b.slots, slot)
	return slot
}

// Slot returns the stored slot with id
func (b *Backend) Slot(id string) (models.Slot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.slotIndex(id)
	if i < 0 {
		return models.Slot{}, false
	}
	return b.slots[i], true
}

// RespondNext queues a canned reply for the next request, bypassing the routes
func (b *Backend) RespondNext(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canned = append(b.canned, cannedResponse{status: status, body: body})
}

// Requests returns every request received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the latest request, or false when none arrived
func (b *Backend) LastRequest() (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}, false
	}
	return b.requests[len(b.requests)-1], true
}

func (b *Backend) record(c *gin.Context) {
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Query:     c.Request.URL.Query(),
		UserID:    c.GetHeader("X-User-Id"),
		RequestID: c.GetHeader("X-Request-Id"),
		Header:    c.Request.Header.Clone(),
	})
	b.mu.Unlock()
	c.Next()
}

func (b *Backend) replay(c *gin.Context) {
	b.mu.Lock()
	if len(b.canned) == 0 {
		b.mu.Unlock()
		c.Next()
		return
	}
	next := b.canned[0]
	b.canned = b.canned[1:]
	b.mu.Unlock()

	c.Data(next.status, "application/json", []byte(next.body))
	c.Abort()
}

func (b *Backend) auth(c *gin.Context) {
	if c.GetHeader("X-User-Id") == "" {
		c.String(http.StatusUnauthorized, "Missing user ID header")
		c.Abort()
		return
	}
	c.Next()
}

// caller resolves X-User-Id to a known user with the wanted role
func (b *Backend) caller(c *gin.Context, role models.UserRole) (models.User, bool) {
	u, ok := models.FindUser(b.users, c.GetHeader("X-User-Id"))
	if !ok {
		c.String(http.StatusInternalServerError, "error fetching user: not found")
		return models.User{}, false
	}
	if u.Role != role {
		c.String(http.StatusForbidden, "user with ID %s is not a %s", u.ID, role)
		return models.User{}, false
	}
	return u, true
}

func (b *Backend) slotIndex(id string) int {
	for i := range b.slots {
		if b.slots[i].ID == id {
			return i
		}
	}
	return -1
}

func pageParams(c *gin.Context) models.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	p := models.PageRequest{Page: page, PageSize: size}.Normalize()
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func paginate(c *gin.Context, slots []models.Slot) {
	p := pageParams(c)
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime.Before(slots[j].StartTime) })

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if start > len(slots) {
		start = len(slots)
	}
	if end > len(slots) {
		end = len(slots)
	}

	c.JSON(http.StatusOK, models.Paginated[models.Slot]{
		Data:       append([]models.Slot{}, slots[start:end]...),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: len(slots),
		TotalPages: models.TotalPagesFor(len(slots), p.PageSize),
	})
}
