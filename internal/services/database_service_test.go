package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

type databaseFixture struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	service   DatabaseService
}

func newDatabaseFixture(t *testing.T) *databaseFixture {
	t.Helper()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testSlog())
	service := NewDatabaseService(repo, validator.New(), publisher, newTestLogger())
	return &databaseFixture{repo: repo, publisher: publisher, service: service}
}

// buildWorkbook renders rows into an in-memory xlsx file.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDatabaseService_CreateDefaults(t *testing.T) {
	f := newDatabaseFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)

	entry, err := f.service.Create(ctx, admin, &DatabaseEntryCreateRequest{
		Name:   "enrollments",
		Schema: map[string]any{"student": "string", "course": "string"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Category != models.CategoryOther {
		t.Errorf("default category = %s, want other", entry.Category)
	}
	if !entry.IsActive {
		t.Error("new entries should be active")
	}
	if entry.UploadedBy != admin.ID {
		t.Errorf("UploadedBy = %s, want %s", entry.UploadedBy, admin.ID)
	}
}

func TestDatabaseService_ImportRecords(t *testing.T) {
	f := newDatabaseFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)

	entry, err := f.service.Create(ctx, admin, &DatabaseEntryCreateRequest{
		Name:   "grades",
		Schema: map[string]any{"student": "string"},
		Data:   []map[string]any{{"student": "existing", "score": 10}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	workbook := buildWorkbook(t, [][]any{
		{"student", "score", "passed", ""},
		{"alice", 92, "true", "ignored"},
		{"bob", 77.5, "false", nil},
		{nil, nil, nil, nil},
	})

	updated, err := f.service.ImportRecords(ctx, admin, entry.ID, workbook)
	if err != nil {
		t.Fatalf("ImportRecords: %v", err)
	}

	records := updated.Records()
	if len(records) != 3 {
		t.Fatalf("want 1 existing + 2 imported records, got %d: %v", len(records), records)
	}
	if records[0]["student"] != "existing" {
		t.Errorf("existing record lost: %v", records[0])
	}

	alice := records[1]
	if alice["student"] != "alice" {
		t.Errorf("student = %v", alice["student"])
	}
	// JSON round-trips numbers as float64.
	if alice["score"] != float64(92) {
		t.Errorf("score = %v (%T), want typed 92", alice["score"], alice["score"])
	}
	if alice["passed"] != true {
		t.Errorf("passed = %v (%T), want typed true", alice["passed"], alice["passed"])
	}
	if _, ok := alice[""]; ok {
		t.Error("blank headers must be skipped")
	}

	bob := records[2]
	if bob["score"] != 77.5 {
		t.Errorf("bob score = %v (%T), want 77.5", bob["score"], bob["score"])
	}

	published := f.publisher.GetPublishedEvents()
	last := published[len(published)-1]
	if data := last.Data.(events.AdminMutationData); data.Action != "import" {
		t.Errorf("last event action = %q, want import", data.Action)
	}
}

func TestDatabaseService_ImportRejectsBadInput(t *testing.T) {
	f := newDatabaseFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)

	entry, err := f.service.Create(ctx, admin, &DatabaseEntryCreateRequest{
		Name:   "grades",
		Schema: map[string]any{"student": "string"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.service.ImportRecords(ctx, admin, entry.ID, []byte("not a zip archive")); !IsValidation(err) {
		t.Errorf("corrupt upload: want validation error, got %v", err)
	}

	headerOnly := buildWorkbook(t, [][]any{{"student", "score"}})
	if _, err := f.service.ImportRecords(ctx, admin, entry.ID, headerOnly); !IsValidation(err) {
		t.Errorf("header-only workbook: want validation error, got %v", err)
	}

	if _, err := f.service.ImportRecords(ctx, admin, uuid.New().String(), headerOnly); !IsNotFound(err) {
		t.Errorf("missing entry: want not-found, got %v", err)
	}
}

func TestDatabaseService_UpdateToggleActive(t *testing.T) {
	f := newDatabaseFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)

	entry, err := f.service.Create(ctx, admin, &DatabaseEntryCreateRequest{
		Name:     "logs",
		Schema:   map[string]any{"event": "string"},
		Category: "logs",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Category != models.CategoryLogs {
		t.Errorf("category = %s, want logs", entry.Category)
	}

	inactive := false
	updated, err := f.service.Update(ctx, admin, entry.ID, &DatabaseEntryUpdateRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Error("entry should be inactive")
	}

	has, err := f.repo.DatabaseEntry().HasActive(ctx)
	if err != nil {
		t.Fatalf("HasActive: %v", err)
	}
	if has {
		t.Error("no active entries should remain")
	}
}

func TestDatabaseService_AuthorizationGate(t *testing.T) {
	f := newDatabaseFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)

	if _, err := f.service.Create(ctx, student, &DatabaseEntryCreateRequest{
		Name:   "x",
		Schema: map[string]any{"a": "b"},
	}); !IsAuthorization(err) {
		t.Errorf("Create: want authorization error, got %v", err)
	}
	if _, err := f.service.ImportRecords(ctx, student, "id", nil); !IsAuthorization(err) {
		t.Errorf("ImportRecords: want authorization error, got %v", err)
	}
}
