package models

import (
	"encoding/json"
	"testing"
)

func TestRescueStatusValidation(t *testing.T) {
	for _, s := range AllRescueStatuses {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if RescueStatus("DONE").Valid() {
		t.Fatal("DONE is not a rescue status")
	}
	if RescueStatus("pending").Valid() {
		t.Fatal("rescue statuses are case sensitive")
	}
}

func TestRescueStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s RescueStatus
	if err := json.Unmarshal([]byte(`"RESCUED"`), &s); err != nil {
		t.Fatalf("RESCUED should unmarshal: %v", err)
	}
	if err := json.Unmarshal([]byte(`"CLOSED"`), &s); err == nil {
		t.Fatal("unknown status should fail to unmarshal")
	}
}

func TestEvidenceRequiredOnlyForRescuedAndReleased(t *testing.T) {
	want := map[RescueStatus]bool{
		RescueStatusPending:    false,
		RescueStatusAssigned:   false,
		RescueStatusRescued:    true,
		RescueStatusReleased:   true,
		RescueStatusFalseAlarm: false,
	}
	for status, expected := range want {
		if status.RequiresEvidence() != expected {
			t.Fatalf("%s: RequiresEvidence=%v, want %v", status, status.RequiresEvidence(), expected)
		}
	}
}

func TestDangerLevelRankOrdering(t *testing.T) {
	if !(DangerLevelLow.Rank() < DangerLevelMedium.Rank() &&
		DangerLevelMedium.Rank() < DangerLevelHigh.Rank() &&
		DangerLevelHigh.Rank() < DangerLevelCritical.Rank()) {
		t.Fatal("danger levels are not ranked Low < Medium < High < Critical")
	}
}

func TestUserRoleUnmarshal(t *testing.T) {
	var r UserRole
	if err := json.Unmarshal([]byte(`"WILDLIFE_OFFICER"`), &r); err != nil {
		t.Fatalf("officer role should unmarshal: %v", err)
	}
	if err := json.Unmarshal([]byte(`"ADMIN"`), &r); err == nil {
		t.Fatal("unknown role should fail to unmarshal")
	}
}

func TestLocationTypeAndRiskLevelValues(t *testing.T) {
	if !LocationTypeWaterBody.Valid() || !RiskLevelImmediateDanger.Valid() {
		t.Fatal("known values should be valid")
	}
	if LocationType("Cave").Valid() {
		t.Fatal("Cave is not a location type")
	}
	if RiskLevel("Calm").Valid() {
		t.Fatal("Calm is not a risk level")
	}
}
