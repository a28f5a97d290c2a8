// Package metrics holds the service's Prometheus counters, served by
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fyugp_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	AttendanceSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fyugp_attendance_saves_total",
		Help: "Attendance hours recorded.",
	})

	AttendanceRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fyugp_attendance_rows_written_total",
		Help: "Attendance records written across all saves.",
	})

	LeaveMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fyugp_leave_mutations_total",
		Help: "Leave register changes by operation.",
	}, []string{"op"})

	ReportsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fyugp_reports_built_total",
		Help: "Reports built by scope.",
	}, []string{"scope"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fyugp_exports_total",
		Help: "Report downloads by format.",
	}, []string{"format"})
)
