package admin

import (
	"math"

	"cafe-team.backend/internal/domain/entities"
	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/state"
)

// Filter selects which slice of the cached list the console shows.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterFeatured Filter = "featured"
)

// Filters lists the selector options in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterFeatured}

// ParseFilter accepts "", all, active or featured.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive, FilterFeatured:
		return Filter(s), nil
	}
	return "", domainerrors.BadRequest("filter must be one of all, active, featured")
}

// Apply renders the filter through the container's derived views.
// No store query is issued.
func (f Filter) Apply(team *state.AdminTeam) []*entities.TeamMember {
	switch f {
	case FilterActive:
		return team.ActiveMembers()
	case FilterFeatured:
		return team.FeaturedMembers()
	default:
		return team.Members()
	}
}

// Dashboard is the summary strip above the member list.
type Dashboard struct {
	TotalMembers      int            `json:"totalMembers"`
	ActiveMembers     int            `json:"activeMembers"`
	FeaturedMembers   int            `json:"featuredMembers"`
	AverageExperience int            `json:"averageExperience"`
	FilterCounts      map[Filter]int `json:"filterCounts"`
}

// BuildDashboard summarizes the cached list.
func BuildDashboard(team *state.AdminTeam) Dashboard {
	all := team.Members()
	d := Dashboard{
		TotalMembers:      len(all),
		ActiveMembers:     len(team.ActiveMembers()),
		FeaturedMembers:   len(team.FeaturedMembers()),
		AverageExperience: AverageExperience(all),
	}
	d.FilterCounts = map[Filter]int{
		FilterAll:      d.TotalMembers,
		FilterActive:   d.ActiveMembers,
		FilterFeatured: d.FeaturedMembers,
	}
	return d
}

// AverageExperience is the mean years of experience over every member,
// counting unknown as zero, rounded half up. Zero for an empty list.
func AverageExperience(members []*entities.TeamMember) int {
	if len(members) == 0 {
		return 0
	}
	sum := 0
	for _, m := range members {
		if m.YearsExperience != nil {
			sum += *m.YearsExperience
		}
	}
	return int(math.Floor(float64(sum)/float64(len(members)) + 0.5))
}
