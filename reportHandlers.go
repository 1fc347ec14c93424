package main

import (
	"net/http"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"bitbucket.org/wildlifefocus/reptileguard_backend/vision"
	"bitbucket.org/wildlifefocus/reptileguard_backend/workflow"
	"github.com/gin-gonic/gin"
)

type createReportRequest struct {
	models.NewSightingReport
	// PhotosBase64 feeds species identification when reptile_data is absent.
	PhotosBase64 []string `json:"photos_base64"`
}

func createReportHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createReportRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, summary, err := engine.SubmitReport(c.Request.Context(), &input.NewSightingReport, input.PhotosBase64)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"report":       report,
			"notification": summary,
		})
	}
}

func getReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := models.GetReportByReportID(c.Request.Context(), c.Param("reportId"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if report == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}

		// Citizens may only open their own reports.
		user, err := models.GetSessionUser(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		if user.Role != models.UserRoleOfficer && report.UserId != user.ID.String() {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func updateReportStatusHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.ReportStatusUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err := engine.UpdateStatus(c.Request.Context(), c.Param("reportId"), &input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func deleteReportHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Reason string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deletion reason is required"})
			return
		}
		if err := engine.Delete(c.Request.Context(), c.Param("reportId"), input.Reason); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "report deleted"})
	}
}

func reportStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := models.GetReportStats(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func exportReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := models.GetAllReports(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=sighting_reports.xlsx")
		if err := models.ExportReportsXlsx(c.Request.Context(), reports, c.Writer); err != nil {
			c.Error(err)
		}
	}
}

func deletionAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		audits, err := models.GetDeletionAudits(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"audits": audits})
	}
}

// identifyHandler runs species identification without filing a report, for
// the submission form preview.
func identifyHandler(client *vision.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !config.VisionEnabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "species identification is not available"})
			return
		}
		var input struct {
			PhotosBase64 []string `json:"photos_base64" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := client.Identify(c.Request.Context(), input.PhotosBase64)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
