package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/response"
	"github.com/stemsi/course-feed/internal/schedule"
	"github.com/stemsi/course-feed/internal/service"
	"github.com/stemsi/course-feed/internal/validator"
)

// notLoadedRetry is how long clients are told to wait while the first
// ingest after a cold start is still running.
const notLoadedRetry = 30 * time.Second

// ScheduleHandler serves the public, read-only schedule endpoints.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// GetSchedule godoc
// GET /api/v1/schedule
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	sched, err := h.scheduleService.Current(c.Request.Context())
	if err != nil {
		failSchedule(c, err)
		return
	}
	response.Success(c, http.StatusOK, sched)
}

// ListSubjects godoc
// GET /api/v1/subjects
func (h *ScheduleHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.scheduleService.Subjects(c.Request.Context())
	if err != nil {
		failSchedule(c, err)
		return
	}
	if subjects == nil {
		subjects = []schedule.Subject{}
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListCourses godoc
// GET /api/v1/courses?term=&subject=&level=&available=&page=&per_page=
func (h *ScheduleHandler) ListCourses(c *gin.Context) {
	var filter model.CourseFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	courses, total, err := h.scheduleService.Courses(c.Request.Context(), filter)
	if err != nil {
		failSchedule(c, err)
		return
	}

	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = service.DefaultPerPage
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, response.NewPagination(page, perPage, total))
}

// GetCourse godoc
// GET /api/v1/courses/:subject/:code
func (h *ScheduleHandler) GetCourse(c *gin.Context) {
	var lookup model.CourseLookup
	if fields := validator.BindURI(c, &lookup); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.scheduleService.Course(c.Request.Context(), lookup.Subject, lookup.Code)
	if err != nil {
		failSchedule(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

func failSchedule(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotLoaded):
		response.FailRetryAfter(c, http.StatusServiceUnavailable, response.ErrScheduleNotLoaded, notLoadedRetry)
	case errors.Is(err, service.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
