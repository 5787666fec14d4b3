package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

type mockRepo struct {
	appointments map[string]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: map[string]*Appointment{}}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appointments[a.AppointmentID] = a
	return nil
}

func (m *mockRepo) GetByAppointmentID(_ context.Context, id string) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "Appointment not found")
	}
	return a, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.AppointmentID]; !ok {
		return apperr.E(apperr.KindNotFound, "Appointment not found")
	}
	a.UpdatedAt = time.Now()
	m.appointments[a.AppointmentID] = a
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != "" && a.DoctorID != f.DoctorID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Date != nil {
			day := f.Date.Truncate(24 * time.Hour)
			if a.Date.Before(day) || !a.Date.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		out = append(out, a)
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func newTestService(repo Repository, at time.Time) *Service {
	s := NewService(repo, zerolog.Nop())
	s.now = func() time.Time { return at }
	return s
}

func TestCreateAppointment(t *testing.T) {
	repo := newMockRepo()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, at)

	a, err := svc.Create(context.Background(), CreateInput{
		PatientID:  "acme-P-1",
		DoctorID:   "dr.jones",
		Department: "Cardiology",
		Date:       "2025-03-12T10:30:00Z",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := fmt.Sprintf("APT-%d", at.UnixMilli()); a.AppointmentID != want {
		t.Errorf("appointment id = %q, want %q", a.AppointmentID, want)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want SCHEDULED", a.Status)
	}
	if a.Type != TypeOPD {
		t.Errorf("type = %q, want OPD default", a.Type)
	}
	if !a.Date.Equal(time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("date = %v", a.Date)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), time.Now())

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing patient", CreateInput{DoctorID: "d", Date: "2025-03-12"}},
		{"missing doctor", CreateInput{PatientID: "p", Date: "2025-03-12"}},
		{"missing date", CreateInput{PatientID: "p", DoctorID: "d"}},
		{"bad date", CreateInput{PatientID: "p", DoctorID: "d", Date: "12/03/2025"}},
		{"bad type", CreateInput{PatientID: "p", DoctorID: "d", Date: "2025-03-12", Type: "WALK_IN"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestCreateAppointmentDateOnly(t *testing.T) {
	svc := newTestService(newMockRepo(), time.Now())

	a, err := svc.Create(context.Background(), CreateInput{
		PatientID: "acme-P-1", DoctorID: "dr.jones", Date: "2025-03-12", Type: TypeFollowUp,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !a.Date.Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v, want midnight UTC", a.Date)
	}
	if a.Type != TypeFollowUp {
		t.Errorf("type = %q, want FOLLOW_UP", a.Type)
	}
}

func TestUpdateAppointment(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, time.Now())

	a, err := svc.Create(context.Background(), CreateInput{
		PatientID: "acme-P-1", DoctorID: "dr.jones", Date: "2025-03-12",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := StatusCompleted
	notes := "Patient seen"
	updated, err := svc.Update(context.Background(), a.AppointmentID, UpdateInput{
		Status: &status,
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", updated.Status)
	}
	if updated.Notes != "Patient seen" {
		t.Errorf("notes = %q", updated.Notes)
	}
	if updated.DoctorID != "dr.jones" {
		t.Errorf("doctorId changed unexpectedly: %q", updated.DoctorID)
	}
}

func TestUpdateAppointmentRejections(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, time.Now())

	a, err := svc.Create(context.Background(), CreateInput{
		PatientID: "acme-P-1", DoctorID: "dr.jones", Date: "2025-03-12",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("not found", func(t *testing.T) {
		status := StatusCancelled
		if _, err := svc.Update(context.Background(), "APT-0", UpdateInput{Status: &status}); !apperr.IsKind(err, apperr.KindNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
	})
	t.Run("bad status", func(t *testing.T) {
		bad := Status("DONE")
		if _, err := svc.Update(context.Background(), a.AppointmentID, UpdateInput{Status: &bad}); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("err = %v, want validation error", err)
		}
	})
	t.Run("bad type", func(t *testing.T) {
		bad := Type("WALK_IN")
		if _, err := svc.Update(context.Background(), a.AppointmentID, UpdateInput{Type: &bad}); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("err = %v, want validation error", err)
		}
	})
	t.Run("bad date", func(t *testing.T) {
		bad := "next tuesday"
		if _, err := svc.Update(context.Background(), a.AppointmentID, UpdateInput{Date: &bad}); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("err = %v, want validation error", err)
		}
	})
}

func TestListAppointmentsFilters(t *testing.T) {
	repo := newMockRepo()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	seed := []CreateInput{
		{PatientID: "acme-P-1", DoctorID: "dr.jones", Date: "2025-03-12T09:00:00Z"},
		{PatientID: "acme-P-1", DoctorID: "dr.smith", Date: "2025-03-12T14:00:00Z"},
		{PatientID: "acme-P-2", DoctorID: "dr.jones", Date: "2025-03-13T09:00:00Z"},
	}
	for i, in := range seed {
		svc := newTestService(repo, base.Add(time.Duration(i)*time.Second))
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	svc := newTestService(repo, base)

	t.Run("by patient", func(t *testing.T) {
		items, total, err := svc.List(context.Background(), Filter{PatientID: "acme-P-1"}, 20, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 2 || len(items) != 2 {
			t.Errorf("got %d/%d, want 2", len(items), total)
		}
	})
	t.Run("by doctor", func(t *testing.T) {
		_, total, err := svc.List(context.Background(), Filter{DoctorID: "dr.jones"}, 20, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})
	t.Run("by date", func(t *testing.T) {
		day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
		_, total, err := svc.List(context.Background(), Filter{Date: &day}, 20, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2 on 2025-03-12", total)
		}
	})
	t.Run("by status after update", func(t *testing.T) {
		items, _, err := svc.List(context.Background(), Filter{DoctorID: "dr.smith"}, 20, 0)
		if err != nil || len(items) != 1 {
			t.Fatalf("List: %v (%d items)", err, len(items))
		}
		status := StatusCancelled
		if _, err := svc.Update(context.Background(), items[0].AppointmentID, UpdateInput{Status: &status}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		_, total, err := svc.List(context.Background(), Filter{Status: StatusCancelled}, 20, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1 cancelled", total)
		}
	})
}
