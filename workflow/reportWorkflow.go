package workflow

import (
	"context"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/feed"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"bitbucket.org/wildlifefocus/reptileguard_backend/vision"
)

// Engine orchestrates report mutations: store write, officer notification,
// change event publication and feed refresh. Mail and vision clients may be
// nil when unconfigured; the corresponding step is skipped.
type Engine struct {
	Hub    *feed.Hub
	Mailer Sender
	Vision *vision.Client
}

func NewEngine(hub *feed.Hub, sender Sender, visionClient *vision.Client) *Engine {
	return &Engine{Hub: hub, Mailer: sender, Vision: visionClient}
}

// SubmitReport files a new sighting. When the reporter supplied no species
// data, identification runs over the photos first; identification failure is
// not fatal, the report is filed unidentified.
func (e *Engine) SubmitReport(ctx context.Context, input *models.NewSightingReport, photosBase64 []string) (*models.SightingReport, *NotificationSummary, error) {
	logger := config.GetLogger()

	if input.ReptileData == nil && e.Vision != nil && config.VisionEnabled() && len(photosBase64) > 0 {
		identifyCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
		reptile, err := e.Vision.Identify(identifyCtx, photosBase64)
		cancel()
		if err != nil {
			config.LogError(logger, "workflow", "SubmitReport", "Species identification failed", nil, err)
		} else {
			input.ReptileData = reptile
		}
	}

	report, err := models.CreateReport(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	summary := &NotificationSummary{Success: false, Message: "notification dispatch skipped"}
	if e.Mailer != nil {
		summary, err = NotifyOfficers(ctx, e.Mailer, report)
		if err != nil {
			config.LogError(logger, "workflow", "SubmitReport", "Officer notification failed", report.ReportId, err)
			summary = &NotificationSummary{Success: false, NotifiedCount: 0, Message: err.Error()}
		}
	}

	e.publishEvent(ctx, report, config.ReportEventCreated)
	e.refreshFeed(ctx)

	return report, summary, nil
}

// UpdateStatus applies an officer action under a per-report lock.
func (e *Engine) UpdateStatus(ctx context.Context, reportId string, input *models.ReportStatusUpdate) (*models.SightingReport, error) {
	var report *models.SightingReport

	err := withReportLock(ctx, reportId, func() error {
		var err error
		report, err = models.UpdateReportStatus(ctx, reportId, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publishEvent(ctx, report, config.ReportEventStatusChanged)
	e.refreshFeed(ctx)
	return report, nil
}

// Delete archives and removes a report under a per-report lock.
func (e *Engine) Delete(ctx context.Context, reportId string, reason string) error {
	var snapshot *models.SightingReport

	err := withReportLock(ctx, reportId, func() error {
		var err error
		snapshot, err = models.GetReportByReportID(ctx, reportId)
		if err != nil {
			return err
		}
		if snapshot == nil {
			return utils.ErrorRecordNotFound
		}
		return models.DeleteReport(ctx, reportId, reason)
	})
	if err != nil {
		return err
	}

	e.publishEvent(ctx, snapshot, config.ReportEventDeleted)
	e.refreshFeed(ctx)
	return nil
}

// HandleReportEvent reacts to a change published by another instance.
func (e *Engine) HandleReportEvent(ctx context.Context, msg config.ReportEventMessage) {
	e.refreshFeed(ctx)
}

func (e *Engine) refreshFeed(ctx context.Context) {
	if e.Hub != nil {
		go e.Hub.Refresh(ctx)
	}
}

// publishEvent is best-effort: a publish failure is logged and never rolls
// back the report write.
func (e *Engine) publishEvent(ctx context.Context, report *models.SightingReport, action string) {
	if !config.ReportEventsEnabled() || report == nil {
		return
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	go func() {
		err := config.PublishReportEvent(config.ReportEventMessage{
			ReportId:      report.ReportId,
			Action:        action,
			Status:        string(report.Status),
			UserId:        report.UserId,
			State:         report.Location.State,
			District:      report.Location.District,
			OccurredAt:    time.Now().UTC(),
			CorrelationId: correlationId,
		})
		if err != nil {
			config.LogError(config.GetLogger(), "workflow", "publishEvent", "Failed to publish report event", report.ReportId, err)
		}
	}()
}
