package workflow

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/mailer"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"github.com/sirupsen/logrus"
)

// Sender abstracts the mail client so tests can run without network.
type Sender interface {
	Send(ctx context.Context, params mailer.TemplateParams) error
}

// NotificationSummary reports the outcome of one dispatch run. Success means
// the dispatch itself ran; NotifiedCount can be zero when no officer covers
// the report's region.
type NotificationSummary struct {
	Success       bool   `json:"success"`
	NotifiedCount int    `json:"notifiedCount"`
	Message       string `json:"message"`
}

// NotifyOfficers emails every officer responsible for the report's district,
// falling back to state-wide coverage. One failed recipient never aborts the
// rest of the fan-out.
func NotifyOfficers(ctx context.Context, sender Sender, report *models.SightingReport) (*NotificationSummary, error) {
	logger := config.GetLogger()

	if !config.OfficerNotificationsEnabled() {
		return &NotificationSummary{Success: true, NotifiedCount: 0, Message: "officer notifications are disabled"}, nil
	}

	officers, err := models.GetOfficersForNotification(ctx, report.Location.District, report.Location.State)
	if err != nil {
		return nil, err
	}
	if len(officers) == 0 {
		return &NotificationSummary{
			Success:       true,
			NotifiedCount: 0,
			Message: fmt.Sprintf("no officers registered for %s district or %s state",
				report.Location.District, report.Location.State),
		}, nil
	}

	notified := 0
	for _, officer := range officers {
		err := sender.Send(ctx, buildTemplateParams(officer, report))
		if err != nil {
			config.LogError(logger, "workflow", "NotifyOfficers", "Failed to email officer", officer.Email, err)
			continue
		}
		notified++
	}

	logger.WithFields(logrus.Fields{
		"field":     "NotifyOfficers",
		"report_id": report.ReportId,
		"district":  report.Location.District,
		"notified":  notified,
		"total":     len(officers),
	}).Info("officer notification dispatch finished")

	return &NotificationSummary{
		Success:       true,
		NotifiedCount: notified,
		Message:       fmt.Sprintf("notified %d of %d officers", notified, len(officers)),
	}, nil
}

func buildTemplateParams(officer *models.User, report *models.SightingReport) mailer.TemplateParams {
	species := "Unidentified reptile"
	venomous := "Unknown"
	dangerLevel := ""
	if report.ReptileData != nil {
		species = report.ReptileData.Name
		if report.ReptileData.IsVenomous {
			venomous = "Yes"
		} else {
			venomous = "No"
		}
		dangerLevel = string(report.ReptileData.DangerLevel)
	}

	locationParts := []string{}
	for _, part := range []string{
		report.Location.Landmark, report.Location.Village,
		report.Location.Taluk, report.Location.District, report.Location.State,
	} {
		if strings.TrimSpace(part) != "" {
			locationParts = append(locationParts, part)
		}
	}

	return mailer.TemplateParams{
		"to_email":        officer.Email,
		"officer_name":    officer.Name,
		"report_id":       report.ReportId,
		"species":         species,
		"venomous":        venomous,
		"danger_level":    dangerLevel,
		"risk_level":      string(report.RiskLevel),
		"location":        strings.Join(locationParts, ", "),
		"location_type":   string(report.Location.LocationType),
		"sighting_time":   report.SightingTime,
		"reporter_name":   report.ReporterName,
		"reporter_mobile": report.ReporterMobile,
	}
}
