package workflow

import (
	"context"
	"testing"

	"bitbucket.org/wildlifefocus/reptileguard_backend/mailer"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"github.com/google/uuid"
)

// NOTE: These tests are intentionally DB-free. Officer resolution against
// MySQL is covered in an environment that can run the full stack.

type fakeSender struct {
	sent []mailer.TemplateParams
}

func (f *fakeSender) Send(ctx context.Context, params mailer.TemplateParams) error {
	f.sent = append(f.sent, params)
	return nil
}

func sampleReport() *models.SightingReport {
	return &models.SightingReport{
		ID:             uuid.New(),
		ReportId:       "RPT-0CBE7F",
		ReporterName:   "Asha",
		ReporterMobile: "+919876543210",
		SightingTime:   "Early morning",
		RiskLevel:      models.RiskLevelImmediateDanger,
		ReptileData: &models.ReptileData{
			Name:        "Indian Cobra",
			IsVenomous:  true,
			DangerLevel: models.DangerLevelCritical,
		},
		Location: models.Location{
			State:        "Karnataka",
			District:     "Bengaluru Urban",
			Village:      "Whitefield",
			Landmark:     "Near the lake",
			LocationType: models.LocationTypeHouse,
		},
	}
}

func TestNotifyOfficersSkipsWhenDisabled(t *testing.T) {
	t.Setenv("NOTIFY_OFFICERS", "false")

	sender := &fakeSender{}
	summary, err := NotifyOfficers(context.Background(), sender, sampleReport())
	if err != nil {
		t.Fatalf("NotifyOfficers: %v", err)
	}
	if !summary.Success || summary.NotifiedCount != 0 {
		t.Fatalf("disabled dispatch should succeed with zero notified: %+v", summary)
	}
	if len(sender.sent) != 0 {
		t.Fatal("disabled dispatch must not send mail")
	}
}

func TestTemplateParamsCarryReportDetails(t *testing.T) {
	officer := &models.User{
		ID:    uuid.New(),
		Name:  "Officer Rao",
		Email: "rao@forest.gov.in",
	}
	params := buildTemplateParams(officer, sampleReport())

	want := map[string]string{
		"to_email":        "rao@forest.gov.in",
		"officer_name":    "Officer Rao",
		"report_id":       "RPT-0CBE7F",
		"species":         "Indian Cobra",
		"venomous":        "Yes",
		"danger_level":    "Critical",
		"risk_level":      "Immediate danger",
		"location_type":   "House",
		"reporter_name":   "Asha",
		"reporter_mobile": "+919876543210",
	}
	for key, expected := range want {
		if params[key] != expected {
			t.Fatalf("param %s = %q, want %q", key, params[key], expected)
		}
	}
	if params["location"] != "Near the lake, Whitefield, Bengaluru Urban, Karnataka" {
		t.Fatalf("location assembled wrong: %q", params["location"])
	}
}

func TestTemplateParamsWithoutSpeciesData(t *testing.T) {
	report := sampleReport()
	report.ReptileData = nil

	params := buildTemplateParams(&models.User{Email: "x@y.z"}, report)
	if params["species"] != "Unidentified reptile" {
		t.Fatalf("species fallback missing: %q", params["species"])
	}
	if params["venomous"] != "Unknown" {
		t.Fatalf("venomous fallback missing: %q", params["venomous"])
	}
}
