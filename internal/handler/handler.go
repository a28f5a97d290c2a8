package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fyugp/internal/attendance"
	"fyugp/internal/auth"
	"fyugp/internal/helper"
	"fyugp/internal/leave"
	"fyugp/internal/queue"
	"fyugp/internal/report"
	"fyugp/internal/roster"
	"fyugp/internal/store"
)

// Options wires a Handler to its collaborators.
type Options struct {
	Store       store.Store
	Queue       queue.Queue
	Revoker     auth.Revoker
	Issuer      string
	SigningKey  string
	AccessTTL   time.Duration
	DefaultFrom string
}

// Handler serves the attendance API. Every request runs as one
// load-mutate-save cycle under mu, so two submissions never interleave.
type Handler struct {
	store       store.Store
	att         *attendance.Service
	queue       queue.Queue
	revoker     auth.Revoker
	issuer      string
	signingKey  string
	accessTTL   time.Duration
	defaultFrom time.Time
	now         func() time.Time

	mu sync.Mutex
}

// New builds a Handler. An unparsable DefaultFrom falls back to the first of
// the current month.
func New(opts Options) *Handler {
	h := &Handler{
		store:      opts.Store,
		att:        attendance.NewService(),
		queue:      opts.Queue,
		revoker:    opts.Revoker,
		issuer:     opts.Issuer,
		signingKey: opts.SigningKey,
		accessTTL:  opts.AccessTTL,
		now:        time.Now,
	}
	if h.revoker == nil {
		h.revoker = auth.NewMemoryRevoker()
	}
	from, err := helper.ParseDate(opts.DefaultFrom)
	if err != nil {
		log.Printf("warning: report default start %q: %v", opts.DefaultFrom, err)
		y, m, _ := time.Now().UTC().Date()
		from = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
	h.defaultFrom = from
	return h
}

// Routes registers the /v1 API on r.
func (h *Handler) Routes(r gin.IRouter) {
	v1 := r.Group("/v1", h.serialize)
	v1.POST("/login", h.Login)

	authed := v1.Group("", auth.RequireIdentity(h.signingKey, h.issuer, h.revoker))
	authed.POST("/logout", h.Logout)
	authed.GET("/courses", h.ListCourses)
	authed.GET("/courses/:id/students", h.CourseStudents)
	authed.GET("/courses/:id/hours", h.CourseHours)
	authed.POST("/courses/:id/attendance", h.RecordAttendance)
	authed.GET("/reports", h.Report)
	authed.GET("/reports/detailed.csv", h.ExportDetailedCSV)
	authed.GET("/reports/summary.csv", h.ExportSummaryCSV)
	authed.GET("/reports/report.xlsx", h.ExportXLSX)

	admin := authed.Group("", auth.RequireRole(roster.RoleAdmin, roster.RoleDeptAdmin))
	admin.GET("/leave", h.ListLeave)
	admin.POST("/leave", h.AddLeave)
	admin.DELETE("/leave/:index", h.DeleteLeave)
	admin.GET("/departments", h.Departments)
}

func (h *Handler) serialize(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Next()
}

// load reads every table for this interaction.
func (h *Handler) load(c *gin.Context) (*store.Tables, bool) {
	tables, err := h.store.Load(c.Request.Context())
	if err != nil {
		log.Printf("load tables: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data unavailable"})
		return nil, false
	}
	return tables, true
}

func (h *Handler) notify(ctx context.Context, typ, body string) {
	if h.queue == nil {
		return
	}
	if err := h.queue.Publish(ctx, queue.NewMessage(typ, body)); err != nil {
		log.Printf("queue publish %s failed: %v", typ, err)
	}
}

// fail maps domain errors onto HTTP responses.
func fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, roster.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, roster.ErrCourseNotFound), errors.Is(err, leave.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, helper.ErrInvalidDate),
		errors.Is(err, attendance.ErrUnknownHour),
		errors.Is(err, attendance.ErrUnknownStatus),
		errors.Is(err, report.ErrBadRange),
		errors.Is(err, errBadRequest),
		errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var (
	errForbidden  = errors.New("forbidden")
	errBadRequest = errors.New("bad request")
)

// identity returns the caller set by RequireIdentity.
func identity(c *gin.Context) auth.Identity {
	id, _ := auth.FromContext(c)
	return id
}

// courseFor resolves a course the caller may work with. Admins may use any
// course; everyone else only the courses they teach.
func courseFor(id auth.Identity, courses []roster.Course, courseID string) (roster.Course, error) {
	course, err := roster.FindCourse(courses, courseID)
	if err != nil {
		return roster.Course{}, err
	}
	if id.Role != roster.RoleAdmin && course.TeacherID != id.TeacherID {
		return roster.Course{}, fmt.Errorf("%w: course %s belongs to another teacher", errForbidden, courseID)
	}
	return course, nil
}
