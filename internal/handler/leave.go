package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fyugp/internal/auth"
	"fyugp/internal/helper"
	"fyugp/internal/leave"
	"fyugp/internal/metrics"
	"fyugp/internal/queue"
	"fyugp/internal/roster"
)

type leaveRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Activity  string `json:"activity" binding:"required"`
}

// visibleLeave limits a department admin to intervals of their own
// department's students. Full admins see everything.
func visibleLeave(id auth.Identity, students []roster.Student) func(leave.Interval) bool {
	if id.Role == roster.RoleAdmin {
		return nil
	}
	dept, err := roster.DepartmentStudents(students, id.Department)
	if err != nil {
		log.Printf("warning: %s %s: %v", id.Role, id.TeacherID, err)
	}
	ids := make(map[string]struct{}, len(dept))
	for _, s := range dept {
		ids[s.StudentID] = struct{}{}
	}
	return func(iv leave.Interval) bool {
		_, ok := ids[iv.StudentID]
		return ok
	}
}

// ListLeave returns the leave register with each row's index.
func (h *Handler) ListLeave(c *gin.Context) {
	tables, ok := h.load(c)
	if !ok {
		return
	}
	entries := tables.Leave.Entries(visibleLeave(identity(c), tables.Students))
	if len(entries) == 0 {
		c.JSON(http.StatusOK, gin.H{"leave": []leave.Entry{}, "message": "no leave records found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leave": entries})
}

// AddLeave appends one interval. Reversed or overlapping intervals are
// accepted as entered.
func (h *Handler) AddLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := helper.ParseDate(req.StartDate)
	if err != nil {
		fail(c, err)
		return
	}
	end, err := helper.ParseDate(req.EndDate)
	if err != nil {
		fail(c, err)
		return
	}
	tables, ok := h.load(c)
	if !ok {
		return
	}
	iv := leave.Interval{StudentID: req.StudentID, Start: start, End: end, Activity: req.Activity}
	if keep := visibleLeave(identity(c), tables.Students); keep != nil && !keep(iv) {
		fail(c, fmt.Errorf("%w: student %s is outside your department", errForbidden, req.StudentID))
		return
	}

	reg := leave.Add(tables.Leave, iv)
	if err := h.store.SaveLeave(c.Request.Context(), reg); err != nil {
		log.Printf("save leave: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	metrics.LeaveMutations.WithLabelValues("add").Inc()
	h.notify(c.Request.Context(), queue.TypeLeaveAdded, leaveSubject(iv))
	c.JSON(http.StatusCreated, gin.H{"leave": leave.Entry{Index: len(reg) - 1, Interval: reg[len(reg)-1]}})
}

// DeleteLeave removes the interval at the given row index.
func (h *Handler) DeleteLeave(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, fmt.Errorf("%w: index must be a number", errBadRequest))
		return
	}
	tables, ok := h.load(c)
	if !ok {
		return
	}
	reg, removed, err := leave.Delete(tables.Leave, index)
	if err != nil {
		fail(c, err)
		return
	}
	if keep := visibleLeave(identity(c), tables.Students); keep != nil && !keep(removed) {
		fail(c, fmt.Errorf("%w: student %s is outside your department", errForbidden, removed.StudentID))
		return
	}
	if err := h.store.SaveLeave(c.Request.Context(), reg); err != nil {
		log.Printf("save leave: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	metrics.LeaveMutations.WithLabelValues("delete").Inc()
	h.notify(c.Request.Context(), queue.TypeLeaveDeleted, leaveSubject(removed))
	c.JSON(http.StatusOK, gin.H{"deleted": leave.Entry{Index: index, Interval: removed}})
}

func leaveSubject(iv leave.Interval) string {
	return fmt.Sprintf("%s %s..%s %s", iv.StudentID, helper.FormatDate(iv.Start), helper.FormatDate(iv.End), iv.Activity)
}

// Departments lists the department codes an admin can report on.
func (h *Handler) Departments(c *gin.Context) {
	tables, ok := h.load(c)
	if !ok {
		return
	}
	id := identity(c)
	if id.Role == roster.RoleAdmin {
		c.JSON(http.StatusOK, gin.H{"departments": roster.Departments(tables.Students)})
		return
	}
	code, ok := roster.DepartmentCode(id.Department)
	if !ok {
		log.Printf("warning: %s %s: %v", id.Role, id.TeacherID, roster.ErrNoDepartment)
		c.JSON(http.StatusOK, gin.H{"departments": []string{}, "warning": roster.ErrNoDepartment.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": []string{code}})
}
