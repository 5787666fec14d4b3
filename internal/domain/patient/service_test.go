package patient

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

type mockRepo struct {
	patients []*Patient
	counters map[string]int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{counters: make(map[string]int64)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients = append(m.patients, p)
	return nil
}

func (m *mockRepo) GetByPatientID(_ context.Context, patientID string) (*Patient, error) {
	for _, p := range m.patients {
		if p.PatientID == patientID {
			return p, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Patient not found")
}

func (m *mockRepo) List(_ context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		if !scope.Allows(p.Department) {
			continue
		}
		if f.PatientType != "" && p.PatientType != f.PatientType {
			continue
		}
		if !scope.Restricted() && f.Department != "" && p.Department != f.Department {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), strings.ToLower(f.Name)) {
			continue
		}
		out = append(out, p)
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *mockRepo) NextSequence(_ context.Context, name string) (int64, error) {
	m.counters[name]++
	return m.counters[name], nil
}

func validInput() CreateInput {
	return CreateInput{
		FirstName:    "Rita",
		LastName:     "Skeeter",
		ContactPhone: "555-0101",
		PatientType:  TypeOPD,
		Department:   "Cardiology",
	}
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	p1, err := svc.Create(ctx, "tenant-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p2, err := svc.Create(ctx, "tenant-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p1.PatientID != "tenant-1-P-1" {
		t.Errorf("first id = %q", p1.PatientID)
	}
	if p2.PatientID != "tenant-1-P-2" {
		t.Errorf("second id = %q", p2.PatientID)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), testLogger())
	ctx := context.Background()

	missing := validInput()
	missing.FirstName = ""
	if _, err := svc.Create(ctx, "t", missing); apperr.MessageOf(err) != "firstName, contactPhone and patientType are required" {
		t.Errorf("missing fields: got %v", err)
	}

	badType := validInput()
	badType.PatientType = Type("ICU")
	if _, err := svc.Create(ctx, "t", badType); apperr.MessageOf(err) != "patientType must be OPD or IPD" {
		t.Errorf("bad type: got %v", err)
	}

	badDate := validInput()
	badDate.DateOfBirth = "31/12/1990"
	if _, err := svc.Create(ctx, "t", badDate); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("bad date: got %v", err)
	}

	withDate := validInput()
	withDate.DateOfBirth = "1990-12-31"
	p, err := svc.Create(ctx, "t", withDate)
	if err != nil {
		t.Fatalf("create with date: %v", err)
	}
	if p.DateOfBirth == nil || p.DateOfBirth.Year() != 1990 {
		t.Errorf("dateOfBirth = %v", p.DateOfBirth)
	}
}

func TestGetByPatientID(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "t", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.GetByPatientID(ctx, created.PatientID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PatientID != created.PatientID {
		t.Errorf("got %q", got.PatientID)
	}

	if _, err := svc.GetByPatientID(ctx, "t-P-999"); apperr.MessageOf(err) != "Patient not found" {
		t.Errorf("missing patient: got %v", err)
	}
}

func TestList_DepartmentScope(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	for _, dept := range []string{"Cardiology", "Cardiology", "Neurology", ""} {
		in := validInput()
		in.Department = dept
		if _, err := svc.Create(ctx, "t", in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Unrestricted callers see everything.
	all, total, err := svc.List(ctx, Filter{}, auth.Scope{}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Errorf("unrestricted total = %d", total)
	}

	// A scoped doctor sees only their department, including hiding
	// records with no department at all.
	scoped, total, err := svc.List(ctx, Filter{}, auth.Scope{Department: "Cardiology"}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Errorf("scoped total = %d", total)
	}
	for _, p := range scoped {
		if p.Department != "Cardiology" {
			t.Errorf("leaked patient from %q", p.Department)
		}
	}

	// The scope wins over a conflicting department filter.
	_, total, err = svc.List(ctx, Filter{Department: "Neurology"}, auth.Scope{Department: "Cardiology"}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Errorf("scope-vs-filter total = %d, want scope to win", total)
	}
}
