package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// NOTE: These tests are intentionally DB-free. They validate identifier and
// snapshot semantics; lifecycle tests against MySQL belong in an environment
// that can run the full stack.

func TestReportIdDerivation(t *testing.T) {
	id := uuid.MustParse("2df060ba-7e51-4435-a2dc-43a6010cbe7f")
	if got := reportIdFromUUID(id); got != "RPT-0CBE7F" {
		t.Fatalf("report id should be RPT- plus last six hex chars uppercased, got %q", got)
	}
}

func TestReportIdShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		rid := reportIdFromUUID(uuid.New())
		if !strings.HasPrefix(rid, "RPT-") || len(rid) != 10 {
			t.Fatalf("malformed report id %q", rid)
		}
		if suffix := rid[4:]; suffix != strings.ToUpper(suffix) {
			t.Fatalf("report id suffix not uppercased: %q", rid)
		}
	}
}

func TestDeletedReportSnapshotRoundTrip(t *testing.T) {
	notes := "left under the porch"
	report := &SightingReport{
		ID:       uuid.New(),
		ReportId: "RPT-0CBE7F",
		UserId:   "citizen-1",
		Status:   RescueStatusRescued,
		ReptileData: &ReptileData{
			Name:        "Indian Cobra",
			IsVenomous:  true,
			DangerLevel: DangerLevelCritical,
			SafetyTips:  []string{"Keep distance", "Call the rescue line"},
		},
		Location: Location{
			State:        "Karnataka",
			District:     "Bengaluru Urban",
			LocationType: LocationTypeHouse,
		},
		OfficerNotes: &notes,
	}
	officer := &User{ID: uuid.New(), Name: "Officer Rao", Email: "rao@forest.gov.in"}

	audit, err := NewDeletedReport(report, officer, "duplicate submission")
	if err != nil {
		t.Fatalf("NewDeletedReport: %v", err)
	}
	if audit.OriginalReportId != report.ReportId {
		t.Fatalf("audit keeps wrong report id %q", audit.OriginalReportId)
	}
	if audit.Reason != "duplicate submission" {
		t.Fatal("audit lost the deletion reason")
	}
	if audit.DeletedByEmail != officer.Email {
		t.Fatal("audit lost the acting officer")
	}

	restored, err := audit.UnpackSnapshot()
	if err != nil {
		t.Fatalf("UnpackSnapshot: %v", err)
	}
	if restored.ID != report.ID || restored.Status != report.Status {
		t.Fatal("snapshot round trip lost fields")
	}
	if restored.ReptileData == nil || restored.ReptileData.Name != "Indian Cobra" {
		t.Fatal("snapshot round trip lost reptile data")
	}
	if restored.OfficerNotes == nil || *restored.OfficerNotes != notes {
		t.Fatal("snapshot round trip lost officer notes")
	}
}
