package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fyugp/internal/attendance"
	"fyugp/internal/helper"
	"fyugp/internal/metrics"
	"fyugp/internal/queue"
	"fyugp/internal/roster"
)

const msgNoStudents = "no students found"

// ListCourses returns the caller's courses; admins see every course.
func (h *Handler) ListCourses(c *gin.Context) {
	tables, ok := h.load(c)
	if !ok {
		return
	}
	id := identity(c)
	courses := tables.Courses
	if id.Role != roster.RoleAdmin {
		courses = roster.CoursesTaughtBy(tables.Courses, id.TeacherID)
	}
	resp := gin.H{"courses": courses}
	if len(courses) == 0 {
		resp["courses"] = []roster.Course{}
		resp["message"] = "no courses assigned"
	}
	c.JSON(http.StatusOK, resp)
}

// CourseStudents lists the students eligible for a course.
func (h *Handler) CourseStudents(c *gin.Context) {
	tables, ok := h.load(c)
	if !ok {
		return
	}
	course, err := courseFor(identity(c), tables.Courses, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	eligible := roster.Eligible(course.CourseID, tables.Students)
	if len(eligible) == 0 {
		c.JSON(http.StatusOK, gin.H{"course_id": course.CourseID, "students": []roster.Student{}, "message": msgNoStudents})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": course.CourseID, "students": eligible})
}

// CourseHours lists the hours still open for a course on ?date=, which
// defaults to today.
func (h *Handler) CourseHours(c *gin.Context) {
	tables, ok := h.load(c)
	if !ok {
		return
	}
	course, err := courseFor(identity(c), tables.Courses, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	date := helper.Day(h.now())
	if raw := c.Query("date"); raw != "" {
		if date, err = helper.ParseDate(raw); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"course_id": course.CourseID,
		"date":      helper.FormatDate(date),
		"hours":     attendance.AvailableHours(tables.Attendance, course.CourseID, date),
	})
}

// RecordAttendance saves one hour for a course. Any earlier records for the
// same date, hour and course are replaced.
func (h *Handler) RecordAttendance(c *gin.Context) {
	var req attendance.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tables, ok := h.load(c)
	if !ok {
		return
	}
	id := identity(c)
	course, err := courseFor(id, tables.Courses, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.att.Slot(req, course.CourseID); err != nil {
		fail(c, err)
		return
	}
	eligible := roster.Eligible(course.CourseID, tables.Students)
	if len(eligible) == 0 {
		c.JSON(http.StatusOK, gin.H{"course_id": course.CourseID, "saved": 0, "message": msgNoStudents})
		return
	}

	ledger, batch, err := h.att.Record(tables.Attendance, req, course.CourseID, eligible, id.TeacherID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.store.SaveAttendance(c.Request.Context(), ledger); err != nil {
		log.Printf("save attendance: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	metrics.AttendanceSaves.Inc()
	metrics.AttendanceRows.Add(float64(len(batch)))

	first := batch[0]
	h.notify(c.Request.Context(), queue.TypeAttendanceSaved,
		fmt.Sprintf("%s %s hour %s", course.CourseID, helper.FormatDate(first.Date), first.Hour))

	c.JSON(http.StatusCreated, gin.H{
		"course_id": course.CourseID,
		"date":      helper.FormatDate(first.Date),
		"hour":      first.Hour,
		"saved":     len(batch),
		"records":   batch,
	})
}
