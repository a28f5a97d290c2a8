package attendance

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"fyugp/internal/helper"
	"fyugp/internal/roster"
)

// SaveRequest is one hour's submission for a course. Students not named in
// any list are marked Present.
type SaveRequest struct {
	Date      string   `json:"date" validate:"required"`
	Hour      string   `json:"hour" validate:"required"`
	ExtraTime string   `json:"extra_time"`
	Duration  int      `json:"duration"`
	Absent    []string `json:"absent" validate:"dive,required"`
	NSS       []string `json:"nss" validate:"dive,required"`
	NCC       []string `json:"ncc" validate:"dive,required"`
	Club      []string `json:"club" validate:"dive,required"`
}

// Selections maps each explicit category to the student ids placed in it.
type Selections map[Status]map[string]struct{}

func (r SaveRequest) selections() Selections {
	lists := map[Status][]string{Absent: r.Absent, NSS: r.NSS, NCC: r.NCC, Club: r.Club}
	sel := make(Selections, len(lists))
	for st, ids := range lists {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		sel[st] = set
	}
	return sel
}

// Resolve walks Precedence once and returns the first category containing
// studentID, or Present.
func Resolve(studentID string, sel Selections) Status {
	for _, st := range Precedence {
		if _, ok := sel[st][studentID]; ok {
			return st
		}
	}
	return Present
}

// Service validates and applies attendance submissions to a ledger.
type Service struct {
	validate *validator.Validate
}

// NewService creates a recorder.
func NewService() *Service {
	return &Service{validate: validator.New()}
}

// Slot validates the request and returns the hour it targets.
func (s *Service) Slot(req SaveRequest, courseID string) (Slot, error) {
	if err := s.validate.Struct(req); err != nil {
		return Slot{}, fmt.Errorf("invalid attendance request: %w", err)
	}
	if courseID == "" {
		return Slot{}, fmt.Errorf("invalid attendance request: course required")
	}
	date, err := helper.ParseDate(req.Date)
	if err != nil {
		return Slot{}, err
	}
	hour, err := ParseHour(req.Hour)
	if err != nil {
		return Slot{}, err
	}
	slot := Slot{Date: date, Hour: hour, CourseID: courseID}
	if hour != ExtraHour {
		return slot, nil
	}
	if err := s.validate.Var(req.ExtraTime, "required,datetime=15:04"); err != nil {
		return Slot{}, fmt.Errorf("extra hour start time must be HH:MM: %w", err)
	}
	if err := s.validate.Var(req.Duration, "min=10,max=180"); err != nil {
		return Slot{}, fmt.Errorf("extra hour duration must be 10-180 minutes: %w", err)
	}
	slot.ExtraTime = req.ExtraTime
	slot.Duration = req.Duration
	return slot, nil
}

// BuildBatch assigns exactly one status to every eligible student.
func BuildBatch(slot Slot, sel Selections, eligible []roster.Student, markedBy string) []Record {
	batch := make([]Record, 0, len(eligible))
	for _, st := range eligible {
		batch = append(batch, Record{
			Date:      slot.Date,
			Hour:      slot.Hour,
			CourseID:  slot.CourseID,
			StudentID: st.StudentID,
			Status:    Resolve(st.StudentID, sel),
			MarkedBy:  markedBy,
			ExtraTime: slot.ExtraTime,
			Duration:  slot.Duration,
		})
	}
	return batch
}

// Record validates req, builds the batch for the eligible students and
// returns the ledger with the hour overwritten. The caller persists it.
func (s *Service) Record(l Ledger, req SaveRequest, courseID string, eligible []roster.Student, markedBy string) (Ledger, []Record, error) {
	slot, err := s.Slot(req, courseID)
	if err != nil {
		return l, nil, err
	}
	batch := BuildBatch(slot, req.selections(), eligible, markedBy)
	return Overwrite(l, slot, batch), batch, nil
}
