package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fyugp/internal/auth"
	"fyugp/internal/helper"
	"fyugp/internal/metrics"
	"fyugp/internal/report"
	"fyugp/internal/roster"
	"fyugp/internal/store"
)

const msgNoRecords = "No records found."

// reportScope derives what the caller may see. Teachers see one of their
// courses; admins see a department or, given ?course=, a single course.
// A department admin is pinned to their own department.
func reportScope(c *gin.Context, id auth.Identity, courses []roster.Course) (report.Scope, error) {
	courseID := strings.TrimSpace(c.Query("course"))
	dept := strings.TrimSpace(c.Query("department"))

	if courseID != "" || !roster.IsAdmin(id.Role) {
		if courseID == "" {
			return report.Scope{}, fmt.Errorf("%w: course required", errBadRequest)
		}
		course, err := courseFor(id, courses, courseID)
		if err != nil {
			return report.Scope{}, err
		}
		return report.Scope{Kind: report.KindCourse, CourseID: course.CourseID}, nil
	}

	if id.Role == roster.RoleDeptAdmin {
		own, _ := roster.DepartmentCode(id.Department)
		if want, ok := roster.DepartmentCode(dept); dept != "" && (!ok || want != own) {
			return report.Scope{}, fmt.Errorf("%w: department %q is not yours", errForbidden, dept)
		}
		dept = id.Department
	}
	if dept == "" {
		dept = id.Department
	}
	return report.Scope{Kind: report.KindDepartment, Department: dept}, nil
}

// reportRange reads ?from= and ?to=, defaulting to the configured start and
// today.
func (h *Handler) reportRange(c *gin.Context) (time.Time, time.Time, error) {
	from, to := h.defaultFrom, helper.Day(h.now())
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = helper.ParseDate(raw); err != nil {
			return from, to, err
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = helper.ParseDate(raw); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func (h *Handler) buildReport(c *gin.Context) (report.Report, bool) {
	tables, ok := h.load(c)
	if !ok {
		return report.Report{}, false
	}
	rep, err := h.reportFor(c, tables)
	if err != nil {
		fail(c, err)
		return report.Report{}, false
	}
	metrics.ReportsBuilt.WithLabelValues(string(rep.Scope.Kind)).Inc()
	return rep, true
}

func (h *Handler) reportFor(c *gin.Context, tables *store.Tables) (report.Report, error) {
	scope, err := reportScope(c, identity(c), tables.Courses)
	if err != nil {
		return report.Report{}, err
	}
	from, to, err := h.reportRange(c)
	if err != nil {
		return report.Report{}, err
	}
	rep, err := report.Build(tables.Students, tables.Attendance, tables.Leave, scope, from, to)
	if err != nil {
		return report.Report{}, err
	}
	if tables.Skipped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d unreadable attendance or leave rows were skipped", tables.Skipped))
	}
	return rep, nil
}

// Report returns the detailed and summary tables as JSON.
func (h *Handler) Report(c *gin.Context) {
	rep, ok := h.buildReport(c)
	if !ok {
		return
	}
	if rep.Empty() {
		c.JSON(http.StatusOK, gin.H{"report": rep, "message": msgNoRecords})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep})
}

// ExportDetailedCSV downloads the detailed log.
func (h *Handler) ExportDetailedCSV(c *gin.Context) {
	h.export(c, "csv", "detailed", "text/csv", report.WriteDetailedCSV)
}

// ExportSummaryCSV downloads the per-student summary.
func (h *Handler) ExportSummaryCSV(c *gin.Context) {
	h.export(c, "csv", "summary", "text/csv", report.WriteSummaryCSV)
}

// ExportXLSX downloads both tables as one workbook.
func (h *Handler) ExportXLSX(c *gin.Context) {
	h.export(c, "xlsx", "report",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.WriteXLSX)
}

func (h *Handler) export(c *gin.Context, format, name, contentType string, write func(io.Writer, report.Report) error) {
	rep, ok := h.buildReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, rep); err != nil {
		fail(c, err)
		return
	}
	metrics.Exports.WithLabelValues(format).Inc()
	filename := fmt.Sprintf("attendance_%s_%s_%s.%s", name, rep.From, rep.To, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
