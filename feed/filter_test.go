package feed

import (
	"testing"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"github.com/google/uuid"
)

func report(userId, state, district string, status models.RescueStatus, ts time.Time) *models.SightingReport {
	return &models.SightingReport{
		ID:        uuid.New(),
		ReportId:  "RPT-" + uuid.New().String()[:6],
		UserId:    userId,
		Status:    status,
		Timestamp: ts,
		Location: models.Location{
			State:    state,
			District: district,
		},
	}
}

func at(day int, hour, minute, second int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, second, 0, time.UTC)
}

func citizenScope(userId string) Scope {
	return Scope{UserId: userId, Role: models.UserRoleCitizen, HomeState: "Karnataka", HomeDistrict: "Bengaluru Urban"}
}

func officerScope(userId string) Scope {
	return Scope{UserId: userId, Role: models.UserRoleOfficer, HomeState: "Karnataka", HomeDistrict: "Bengaluru Urban"}
}

func TestCitizenOnlySeesOwnReports(t *testing.T) {
	mine := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	other := report("citizen-2", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 10, 0, 0))

	got := Apply([]*models.SightingReport{mine, other}, citizenScope("citizen-1"), Filter{})
	if len(got) != 1 || got[0].UserId != "citizen-1" {
		t.Fatalf("expected only own report, got %d reports", len(got))
	}
}

func TestCitizenScopeCannotBeWidenedByViewMode(t *testing.T) {
	mine := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	other := report("citizen-2", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 10, 0, 0))

	// A citizen sending ALL or REGION still only sees their own reports.
	for _, mode := range []ViewMode{ViewModeAll, ViewModeRegion, ViewMode("anything")} {
		got := Apply([]*models.SightingReport{mine, other}, citizenScope("citizen-1"), Filter{ViewMode: mode})
		if len(got) != 1 || got[0].UserId != "citizen-1" {
			t.Fatalf("view mode %q widened citizen scope: got %d reports", mode, len(got))
		}
	}
}

func TestOfficerViewModes(t *testing.T) {
	mine := report("officer-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	inRegion := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 10, 0, 0))
	otherDistrict := report("citizen-2", "Karnataka", "Mysuru", models.RescueStatusPending, at(10, 11, 0, 0))
	otherState := report("citizen-3", "Kerala", "Wayanad", models.RescueStatusPending, at(10, 12, 0, 0))
	all := []*models.SightingReport{mine, inRegion, otherDistrict, otherState}

	if got := Apply(all, officerScope("officer-1"), Filter{ViewMode: ViewModeAll}); len(got) != 4 {
		t.Fatalf("ALL: expected 4, got %d", len(got))
	}
	if got := Apply(all, officerScope("officer-1"), Filter{ViewMode: ViewModeMy}); len(got) != 1 || got[0].UserId != "officer-1" {
		t.Fatalf("MY: expected only officer's own report, got %d", len(got))
	}
	got := Apply(all, officerScope("officer-1"), Filter{ViewMode: ViewModeRegion})
	if len(got) != 2 {
		t.Fatalf("REGION: expected 2 Bengaluru Urban reports, got %d", len(got))
	}
	for _, r := range got {
		if r.Location.District != "Bengaluru Urban" {
			t.Fatalf("REGION leaked report from %s", r.Location.District)
		}
	}
}

func TestSearchMatchesSpeciesReporterAndLocality(t *testing.T) {
	cobra := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	cobra.ReptileData = &models.ReptileData{Name: "Indian Cobra", ScientificName: "Naja naja"}
	cobra.ReporterName = "Asha"
	viper := report("citizen-1", "Karnataka", "Mysuru", models.RescueStatusPending, at(10, 10, 0, 0))
	viper.ReptileData = &models.ReptileData{Name: "Russell's Viper"}
	unidentified := report("citizen-1", "Kerala", "Wayanad", models.RescueStatusPending, at(10, 11, 0, 0))

	all := []*models.SightingReport{cobra, viper, unidentified}
	scope := officerScope("officer-1")

	cases := []struct {
		term string
		want int
	}{
		{"cobra", 1},
		{"naja", 1},
		{"asha", 1},
		{"mysuru", 1},
		{"kerala", 1},
		{"KARNATAKA", 2},
		{"  ", 3},
		{"python", 0},
	}
	for _, tc := range cases {
		got := Apply(all, scope, Filter{Search: tc.term})
		if len(got) != tc.want {
			t.Fatalf("search %q: expected %d reports, got %d", tc.term, tc.want, len(got))
		}
	}
}

func TestStatusAndRegionFilters(t *testing.T) {
	pending := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	rescued := report("citizen-2", "Karnataka", "Mysuru", models.RescueStatusRescued, at(10, 10, 0, 0))
	kerala := report("citizen-3", "Kerala", "Wayanad", models.RescueStatusPending, at(10, 11, 0, 0))
	all := []*models.SightingReport{pending, rescued, kerala}
	scope := officerScope("officer-1")

	if got := Apply(all, scope, Filter{Status: models.RescueStatusRescued}); len(got) != 1 || got[0].Status != models.RescueStatusRescued {
		t.Fatalf("status filter failed: got %d", len(got))
	}
	if got := Apply(all, scope, Filter{State: "Kerala"}); len(got) != 1 || got[0].Location.State != "Kerala" {
		t.Fatalf("state filter failed: got %d", len(got))
	}
	if got := Apply(all, scope, Filter{State: "Karnataka", District: "Mysuru"}); len(got) != 1 || got[0].Location.District != "Mysuru" {
		t.Fatalf("district filter failed: got %d", len(got))
	}
}

func TestDateRangeIsInclusiveAtDayGranularity(t *testing.T) {
	// Boundary: from-date at 00:00:00 is in, 23:59:59 the previous day is out.
	midnight := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 0, 0, 0))
	justBefore := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(9, 23, 59, 59))
	lastMoment := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(12, 23, 59, 59))
	dayAfter := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(13, 0, 0, 1))
	all := []*models.SightingReport{midnight, justBefore, lastMoment, dayAfter}

	// The filter dates carry arbitrary clock values; only the day matters.
	from := at(10, 14, 30, 0)
	to := at(12, 3, 0, 0)
	got := Apply(all, officerScope("o"), Filter{ViewMode: ViewModeAll, DateFrom: &from, DateTo: &to})

	if len(got) != 2 {
		t.Fatalf("expected 2 reports inside [day 10, day 12], got %d", len(got))
	}
	for _, r := range got {
		if r.ID == justBefore.ID || r.ID == dayAfter.ID {
			t.Fatalf("report outside the day range leaked through: %s", r.Timestamp)
		}
	}
}

func TestApplyOrdersNewestFirstAndIsStable(t *testing.T) {
	older := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(8, 9, 0, 0))
	newer := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(11, 9, 0, 0))
	sameA := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(9, 12, 0, 0))
	sameB := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(9, 12, 0, 0))
	all := []*models.SightingReport{older, sameA, sameB, newer}

	got := Apply(all, citizenScope("c"), Filter{})
	if len(got) != 4 {
		t.Fatalf("expected 4, got %d", len(got))
	}
	if got[0].ID != newer.ID || got[3].ID != older.ID {
		t.Fatal("reports are not ordered newest first")
	}
	// Equal timestamps keep input order.
	if got[1].ID != sameA.ID || got[2].ID != sameB.ID {
		t.Fatal("sort is not stable for equal timestamps")
	}
}

func TestApplyIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	a := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(8, 9, 0, 0))
	b := report("c", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(11, 9, 0, 0))
	input := []*models.SightingReport{a, b}

	first := Apply(input, citizenScope("c"), Filter{})
	second := Apply(input, citizenScope("c"), Filter{})

	if len(first) != len(second) {
		t.Fatalf("apply is not idempotent: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatal("apply is not idempotent: order differs between runs")
		}
	}
	if input[0].ID != a.ID || input[1].ID != b.ID {
		t.Fatal("apply mutated its input slice")
	}
}

func TestNormalizeClearsDistrictWhenStateChanges(t *testing.T) {
	f := Filter{State: "Kerala", District: "Bengaluru Urban"}
	got := f.Normalize("Karnataka")
	if got.District != "" {
		t.Fatalf("district should clear when state changes, got %q", got.District)
	}

	same := Filter{State: "Karnataka", District: "Mysuru"}
	if got := same.Normalize("Karnataka"); got.District != "Mysuru" {
		t.Fatal("district should survive when state is unchanged")
	}
}
