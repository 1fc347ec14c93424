package feed

import (
	"sort"
	"strings"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
)

type ViewMode string

const (
	// ViewModeMy limits the feed to reports the viewer filed.
	ViewModeMy ViewMode = "MY"
	// ViewModeRegion limits the feed to the viewer's home state and district.
	ViewModeRegion ViewMode = "REGION"
	// ViewModeAll shows everything. Officers only.
	ViewModeAll ViewMode = "ALL"
)

// Scope is the non-negotiable part of a feed query, fixed by who the viewer
// is. Citizens only ever see their own reports regardless of what filter
// values they send.
type Scope struct {
	UserId      string
	Role        models.UserRole
	HomeState   string
	HomeDistrict string
}

// Filter is the viewer-adjustable part of a feed query.
type Filter struct {
	ViewMode ViewMode
	State    string
	District string
	Status   models.RescueStatus
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// dayFloor zeroes the clock so date filters compare at day granularity.
func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Apply evaluates the filter over a snapshot and returns the visible reports
// newest first. It never mutates its input.
func Apply(reports []*models.SightingReport, scope Scope, filter Filter) []*models.SightingReport {

	out := make([]*models.SightingReport, 0, len(reports))
	for _, r := range reports {
		if !matches(r, scope, filter) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func matches(r *models.SightingReport, scope Scope, filter Filter) bool {

	// Citizen scope cannot be widened by the filter.
	if scope.Role != models.UserRoleOfficer {
		if r.UserId != scope.UserId {
			return false
		}
	} else {
		switch filter.ViewMode {
		case ViewModeMy:
			if r.UserId != scope.UserId {
				return false
			}
		case ViewModeRegion:
			if r.Location.State != scope.HomeState {
				return false
			}
			if scope.HomeDistrict != "" && r.Location.District != scope.HomeDistrict {
				return false
			}
		}
	}

	if filter.State != "" && r.Location.State != filter.State {
		return false
	}
	if filter.District != "" && r.Location.District != filter.District {
		return false
	}
	if filter.Status != "" && r.Status != filter.Status {
		return false
	}
	if filter.Search != "" && !matchesSearch(r, filter.Search) {
		return false
	}

	// Date bounds are inclusive at day granularity: a report at 00:00:00 on
	// the from-date is in, one at 23:59:59 the day before is out.
	if filter.DateFrom != nil {
		if dayFloor(r.Timestamp).Before(dayFloor(*filter.DateFrom)) {
			return false
		}
	}
	if filter.DateTo != nil {
		if dayFloor(r.Timestamp).After(dayFloor(*filter.DateTo)) {
			return false
		}
	}
	return true
}

// matchesSearch does a case-insensitive substring match over the fields a
// viewer would scan a list for: report id, reporter, species and locality.
func matchesSearch(r *models.SightingReport, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	haystack := []string{
		r.ReportId,
		r.ReporterName,
		r.Location.Village,
		r.Location.District,
		r.Location.State,
	}
	if r.ReptileData != nil {
		haystack = append(haystack, r.ReptileData.Name, r.ReptileData.ScientificName)
	}
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), term) {
			return true
		}
	}
	return false
}

// Normalize clears values that no longer make sense together: changing state
// invalidates a district chosen under the previous state.
func (f Filter) Normalize(previousState string) Filter {
	if f.State != previousState {
		f.District = ""
	}
	return f
}
