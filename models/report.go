package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReptileData is the species identification attached to a report, either from
// the vision service or entered by hand.
type ReptileData struct {
	Name           string      `json:"name"`
	ScientificName string      `json:"scientific_name"`
	IsVenomous     bool        `json:"is_venomous"`
	DangerLevel    DangerLevel `json:"danger_level"`
	Description    string      `json:"description"`
	SafetyTips     []string    `json:"safety_tips"`
	Habitat        string      `json:"habitat,omitempty"`
	Confidence     float64     `json:"confidence"`
}

type Location struct {
	State        string       `gorm:"size:100;index:idx_reports_region" json:"state"`
	District     string       `gorm:"size:100;index:idx_reports_region" json:"district"`
	Taluk        string       `gorm:"size:100" json:"taluk"`
	Village      string       `gorm:"size:100" json:"village"`
	Landmark     string       `gorm:"size:255" json:"landmark"`
	Pincode      string       `gorm:"size:10" json:"pincode"`
	LocationType LocationType `gorm:"size:30" json:"location_type"`
}

// OfficerSnapshot records who performed an officer action, denormalized so the
// record survives account deletion.
type OfficerSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SightingReport struct {
	ID                uuid.UUID        `gorm:"primary_key" json:"id"`
	ReportId          string           `gorm:"size:12;not null;uniqueIndex" json:"report_id"`
	UserId            string           `gorm:"size:40;not null;index" json:"user_id"`
	ReporterName      string           `gorm:"size:100" json:"reporter_name"`
	ReporterRole      UserRole         `gorm:"size:20" json:"reporter_role"`
	ReporterMobile    string           `gorm:"size:20" json:"reporter_mobile"`
	ReporterAltMobile *string          `gorm:"size:20" json:"reporter_alt_mobile"`
	ReporterEmail     string           `gorm:"size:100" json:"reporter_email"`
	Timestamp         time.Time        `gorm:"autoCreateTime;index" json:"timestamp"`
	SightingTime      string           `gorm:"size:50" json:"sighting_time"`
	ReptileData       *ReptileData     `gorm:"serializer:json" json:"reptile_data"`
	Location          Location         `gorm:"embedded" json:"location"`
	RiskLevel         RiskLevel        `gorm:"size:30" json:"risk_level"`
	ImageUrls         []string         `gorm:"serializer:json" json:"image_urls"`
	RescueImageUrls   []string         `gorm:"serializer:json" json:"rescue_image_urls"`
	Status            RescueStatus     `gorm:"size:20;not null;index" json:"status"`
	OfficerNotes      *string          `gorm:"type:text" json:"officer_notes"`
	UpdatedByOfficer  *OfficerSnapshot `gorm:"serializer:json" json:"updated_by_officer"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SightingReport) TableName() string {
	return "sighting_reports"
}

type NewSightingReport struct {
	SightingTime string       `json:"sighting_time"`
	ReptileData  *ReptileData `json:"reptile_data"`
	Location     Location     `json:"location"`
	RiskLevel    RiskLevel    `json:"risk_level"`
	ImageUrls    []string     `json:"image_urls"`
}

type ReportStatusUpdate struct {
	Status          RescueStatus `json:"status" binding:"required"`
	OfficerNotes    string       `json:"officer_notes"`
	RescueImageUrls []string     `json:"rescue_image_urls"`
}

// reportIdFromUUID derives the human-facing reference from the primary key:
// "RPT-" plus the last six hex characters, uppercased.
func reportIdFromUUID(id uuid.UUID) string {
	compact := strings.ReplaceAll(id.String(), "-", "")
	return "RPT-" + strings.ToUpper(compact[len(compact)-6:])
}

func CreateReport(ctx context.Context, input *NewSightingReport) (*SightingReport, error) {

	db := config.GetDB()

	reporter, err := GetSessionUser(ctx)
	if err != nil {
		return nil, err
	}

	if !input.RiskLevel.Valid() {
		return nil, utils.NewValidationError("risk_level", "invalid risk level")
	}
	if !input.Location.LocationType.Valid() {
		return nil, utils.NewValidationError("location_type", "invalid location type")
	}
	if err := utils.RequireNonEmpty(
		utils.RequiredField{Name: "state", Value: input.Location.State},
		utils.RequiredField{Name: "district", Value: input.Location.District},
		utils.RequiredField{Name: "village", Value: input.Location.Village},
	); err != nil {
		return nil, err
	}
	if input.ReptileData != nil && input.ReptileData.DangerLevel != "" && !input.ReptileData.DangerLevel.Valid() {
		return nil, utils.NewValidationError("danger_level", "invalid danger level")
	}

	id := uuid.New()
	report := SightingReport{
		ID:                id,
		ReportId:          reportIdFromUUID(id),
		UserId:            reporter.ID.String(),
		ReporterName:      reporter.Name,
		ReporterRole:      reporter.Role,
		ReporterMobile:    reporter.Mobile,
		ReporterAltMobile: reporter.AltMobile,
		ReporterEmail:     reporter.Email,
		SightingTime:      input.SightingTime,
		ReptileData:       input.ReptileData,
		Location:          input.Location,
		RiskLevel:         input.RiskLevel,
		ImageUrls:         input.ImageUrls,
		Status:            RescueStatusPending,
	}

	if err := db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, storeError(err)
	}
	return &report, nil
}

// GetReportByReportID looks a report up by its human-facing reference.
// A missing report returns (nil, nil) so callers can distinguish absence
// from store failure.
func GetReportByReportID(ctx context.Context, reportId string) (*SightingReport, error) {
	db := config.GetDB()

	var report SightingReport
	err := db.WithContext(ctx).Model(&SightingReport{}).
		Where("report_id = ?", reportId).Take(&report).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err)
	}
	return &report, nil
}

// UpdateReportStatus applies an officer action to the report identified by
// reportId. Rescue evidence is append-only; notes overwrite only when the
// caller supplies a non-blank value. Every successful update stamps the
// acting officer on the record.
func UpdateReportStatus(ctx context.Context, reportId string, input *ReportStatusUpdate) (*SightingReport, error) {
	db := config.GetDB()

	officer, err := GetSessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if officer.Role != UserRoleOfficer {
		return nil, utils.ErrorUnauthorized
	}
	if !input.Status.Valid() {
		return nil, utils.NewValidationError("status", "invalid rescue status")
	}

	report, err := GetReportByReportID(ctx, reportId)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, utils.ErrorRecordNotFound
	}

	rescueImages := report.RescueImageUrls
	rescueImages = append(rescueImages, input.RescueImageUrls...)
	if input.Status.RequiresEvidence() && len(rescueImages) == 0 {
		return nil, utils.NewValidationError("rescue_image_urls",
			"rescue evidence photo is required for "+string(input.Status))
	}

	report.Status = input.Status
	report.RescueImageUrls = rescueImages
	if strings.TrimSpace(input.OfficerNotes) != "" {
		notes := input.OfficerNotes
		report.OfficerNotes = &notes
	}
	report.UpdatedByOfficer = &OfficerSnapshot{
		ID:    officer.ID.String(),
		Name:  officer.Name,
		Email: officer.Email,
	}

	result := db.WithContext(ctx).Model(&SightingReport{}).Where("report_id = ?", reportId).
		Updates(map[string]interface{}{
			"status":             report.Status,
			"rescue_image_urls":  report.RescueImageUrls,
			"officer_notes":      report.OfficerNotes,
			"updated_by_officer": report.UpdatedByOfficer,
		})
	if result.Error != nil {
		return nil, storeError(result.Error)
	}
	// The report can be deleted between the read above and this write; the
	// lock around officer actions is best-effort only. Zero matched rows is
	// a terminal not-found, never a silent success.
	if result.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return report, nil
}

// DeleteReport removes a report after archiving a full snapshot. The audit
// insert and the row delete commit together; a report missing the moment the
// transaction runs returns ErrorRecordNotFound, so a repeated delete cannot
// write a second audit entry.
func DeleteReport(ctx context.Context, reportId string, reason string) error {
	db := config.GetDB()

	officer, err := GetSessionUser(ctx)
	if err != nil {
		return err
	}
	if officer.Role != UserRoleOfficer {
		return utils.ErrorUnauthorized
	}
	if strings.TrimSpace(reason) == "" {
		return utils.NewValidationError("reason", "deletion reason is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report SightingReport
		err := tx.Model(&SightingReport{}).Where("report_id = ?", reportId).Take(&report).Error
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		if err != nil {
			return storeError(err)
		}

		audit, err := NewDeletedReport(&report, officer, reason)
		if err != nil {
			return err
		}
		if err := tx.Create(audit).Error; err != nil {
			return storeError(err)
		}
		return storeError(tx.Delete(&SightingReport{}, "report_id = ?", reportId).Error)
	})
}

// GetAllReports returns every report, newest first, ordered by the store.
func GetAllReports(ctx context.Context) ([]*SightingReport, error) {
	db := config.GetDB()

	var reports []*SightingReport
	err := db.WithContext(ctx).Model(&SightingReport{}).
		Order("timestamp DESC").Find(&reports).Error
	if err != nil {
		return nil, storeError(err)
	}
	return reports, nil
}

// GetUserReports returns one user's reports. The query carries no order
// clause; results are sorted newest-first in process.
func GetUserReports(ctx context.Context, userId string) ([]*SightingReport, error) {
	db := config.GetDB()

	var reports []*SightingReport
	err := db.WithContext(ctx).Model(&SightingReport{}).
		Where("user_id = ?", userId).Find(&reports).Error
	if err != nil {
		return nil, storeError(err)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
	return reports, nil
}

func GetReportsByStatus(ctx context.Context, status RescueStatus) ([]*SightingReport, error) {
	db := config.GetDB()

	if !status.Valid() {
		return nil, utils.NewValidationError("status", "invalid rescue status")
	}
	var reports []*SightingReport
	err := db.WithContext(ctx).Model(&SightingReport{}).
		Where("status = ?", status).Order("timestamp DESC").Find(&reports).Error
	if err != nil {
		return nil, storeError(err)
	}
	return reports, nil
}

type ReportStats struct {
	Total    int64                  `json:"total"`
	ByStatus map[RescueStatus]int64 `json:"by_status"`
}

func GetReportStats(ctx context.Context) (*ReportStats, error) {
	db := config.GetDB()

	stats := ReportStats{ByStatus: map[RescueStatus]int64{}}
	if err := db.WithContext(ctx).Model(&SightingReport{}).Count(&stats.Total).Error; err != nil {
		return nil, storeError(err)
	}

	rows := []struct {
		Status RescueStatus
		Count  int64
	}{}
	err := db.WithContext(ctx).Model(&SightingReport{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, storeError(err)
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}
	return &stats, nil
}
