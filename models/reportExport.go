package models

import (
	"context"
	"fmt"
	"io"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/utils"
	"github.com/xuri/excelize/v2"
)

// ExportReportsXlsx writes the officer spreadsheet of sighting reports to w.
// Callers pass the report set they are entitled to see.
func ExportReportsXlsx(ctx context.Context, reports []*SightingReport, w io.Writer) error {

	f := excelize.NewFile()
	sheetName := "Sheet1"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Add headers
	headings := []string{
		"ReportId", "Status", "ReportedAt", "SightingTime", "Species",
		"Venomous", "DangerLevel", "RiskLevel", "State", "District",
		"Village", "LocationType", "ReporterName", "ReporterMobile",
		"OfficerNotes", "UpdatedBy",
	}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, r := range reports {
		species := ""
		venomous := ""
		dangerLevel := ""
		if r.ReptileData != nil {
			species = r.ReptileData.Name
			if r.ReptileData.IsVenomous {
				venomous = "Yes"
			} else {
				venomous = "No"
			}
			dangerLevel = string(r.ReptileData.DangerLevel)
		}
		updatedBy := ""
		if r.UpdatedByOfficer != nil {
			updatedBy = r.UpdatedByOfficer.Name
		}

		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, r.ReportId)
		f.SetCellValue(sheetName, "B"+row, string(r.Status))
		f.SetCellValue(sheetName, "C"+row, r.Timestamp.Format(time.RFC3339))
		f.SetCellValue(sheetName, "D"+row, r.SightingTime)
		f.SetCellValue(sheetName, "E"+row, species)
		f.SetCellValue(sheetName, "F"+row, venomous)
		f.SetCellValue(sheetName, "G"+row, dangerLevel)
		f.SetCellValue(sheetName, "H"+row, string(r.RiskLevel))
		f.SetCellValue(sheetName, "I"+row, r.Location.State)
		f.SetCellValue(sheetName, "J"+row, r.Location.District)
		f.SetCellValue(sheetName, "K"+row, r.Location.Village)
		f.SetCellValue(sheetName, "L"+row, string(r.Location.LocationType))
		f.SetCellValue(sheetName, "M"+row, r.ReporterName)
		f.SetCellValue(sheetName, "N"+row, r.ReporterMobile)
		f.SetCellValue(sheetName, "O"+row, utils.DereferencePtr(r.OfficerNotes, ""))
		f.SetCellValue(sheetName, "P"+row, updatedBy)
	}

	return f.Write(w)
}
