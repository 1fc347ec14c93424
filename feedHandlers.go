package main

import (
	"io"
	"net/http"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/feed"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
	"github.com/gin-gonic/gin"
)

// feedScopeFromContext derives the viewer's non-negotiable scope.
func feedScopeFromContext(c *gin.Context) (feed.Scope, error) {
	user, err := models.GetSessionUser(c.Request.Context())
	if err != nil {
		return feed.Scope{}, err
	}
	return feed.Scope{
		UserId:       user.ID.String(),
		Role:         user.Role,
		HomeState:    user.State,
		HomeDistrict: user.District,
	}, nil
}

// feedFilterFromQuery parses the viewer-adjustable filter. Dates use
// YYYY-MM-DD.
func feedFilterFromQuery(c *gin.Context) (feed.Filter, error) {
	filter := feed.Filter{
		ViewMode: feed.ViewMode(c.Query("view")),
		State:    c.Query("state"),
		District: c.Query("district"),
		Status:   models.RescueStatus(c.Query("status")),
		Search:   c.Query("q"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &t
	}
	return filter, nil
}

func listReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := feedScopeFromContext(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		filter, err := feedFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date filter, expected YYYY-MM-DD"})
			return
		}

		var reports []*models.SightingReport
		if scope.Role == models.UserRoleOfficer {
			reports, err = models.GetAllReports(c.Request.Context())
		} else {
			reports, err = models.GetUserReports(c.Request.Context(), scope.UserId)
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": feed.Apply(reports, scope, filter)})
	}
}

// streamReportsHandler serves the live feed over SSE. Each event replaces the
// client's whole list.
func streamReportsHandler(hub *feed.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := feedScopeFromContext(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		filter, err := feedFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date filter, expected YYYY-MM-DD"})
			return
		}

		sub := hub.Watch(c.Request.Context(), scope, filter)
		defer sub.Cancel()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		keepAlive := time.NewTicker(25 * time.Second)
		defer keepAlive.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case snap, ok := <-sub.C:
				if !ok {
					return false
				}
				c.SSEvent("snapshot", snap)
				return true
			case <-keepAlive.C:
				c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
