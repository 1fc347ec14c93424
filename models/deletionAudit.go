package models

import (
	"context"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"github.com/google/uuid"
)

// DeletedReport is the append-only archive of removed reports. Rows are only
// ever inserted, inside the same transaction that deletes the live report.
type DeletedReport struct {
	ID               uuid.UUID `gorm:"primary_key" json:"id"`
	OriginalReportId string    `gorm:"size:12;not null;index" json:"original_report_id"`
	ReportSnapshot   string    `gorm:"type:text;not null" json:"report_snapshot"`
	DeletedById      string    `gorm:"size:40;not null" json:"deleted_by_id"`
	DeletedByName    string    `gorm:"size:100" json:"deleted_by_name"`
	DeletedByEmail   string    `gorm:"size:100" json:"deleted_by_email"`
	Reason           string    `gorm:"type:text;not null" json:"reason"`
	DeletedAt        time.Time `gorm:"autoCreateTime" json:"deleted_at"`
}

func (DeletedReport) TableName() string {
	return "deleted_reports"
}

func NewDeletedReport(report *SightingReport, officer *User, reason string) (*DeletedReport, error) {
	snapshot, err := utils.MarshalToJSON(report)
	if err != nil {
		return nil, err
	}
	return &DeletedReport{
		ID:               uuid.New(),
		OriginalReportId: report.ReportId,
		ReportSnapshot:   snapshot,
		DeletedById:      officer.ID.String(),
		DeletedByName:    officer.Name,
		DeletedByEmail:   officer.Email,
		Reason:           reason,
	}, nil
}

// GetDeletionAudits lists archive entries newest first, officer only.
func GetDeletionAudits(ctx context.Context) ([]*DeletedReport, error) {
	db := config.GetDB()

	officer, err := GetSessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if officer.Role != UserRoleOfficer {
		return nil, utils.ErrorUnauthorized
	}

	var audits []*DeletedReport
	err = db.WithContext(ctx).Model(&DeletedReport{}).
		Order("deleted_at DESC").Find(&audits).Error
	if err != nil {
		return nil, storeError(err)
	}
	return audits, nil
}

// UnpackSnapshot restores the archived report payload.
func (d *DeletedReport) UnpackSnapshot() (*SightingReport, error) {
	var report SightingReport
	if err := utils.UnmarshalFromJSON([]byte(d.ReportSnapshot), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
