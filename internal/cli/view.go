package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/ticketview"
)

// viewFlags mirrors the list filters and sort of the portal.
type viewFlags struct {
	query     string
	status    string
	category  string
	requester string
	date      string
	dateField string
	sort      string
	dir       string
	tz        string
}

func (v *viewFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&v.query, "query", "q", "", "text search over title, number and description")
	fs.StringVar(&v.status, "status", ticketview.All, "OPEN, IN_PROGRESS, RESOLVED or ALL")
	fs.StringVar(&v.category, "category", ticketview.All, "category or ALL")
	fs.StringVar(&v.requester, "requester", ticketview.All, "requester name or ALL")
	fs.StringVar(&v.date, "date", "", "calendar date YYYY-MM-DD")
	fs.StringVar(&v.dateField, "date-field", string(ticketview.DateCreated), "created, resolved or updated")
	fs.StringVar(&v.sort, "sort", "", "sort field (default created_at)")
	fs.StringVar(&v.dir, "dir", "", "asc or desc")
	fs.StringVar(&v.tz, "tz", "", "IANA timezone for dates (defaults to app.timezone)")
}

func (v *viewFlags) criteria() (ticketview.Criteria, error) {
	field, err := ticketview.ParseDateField(v.dateField)
	if err != nil {
		return ticketview.Criteria{}, err
	}
	date, err := ticketview.ParseDate(v.date)
	if err != nil {
		return ticketview.Criteria{}, err
	}
	return ticketview.Criteria{
		Query:     v.query,
		Status:    v.status,
		Category:  v.category,
		Requester: v.requester,
		DateField: field,
		Date:      date,
	}, nil
}

func (v *viewFlags) sortState() (ticketview.SortState, error) {
	field, err := ticketview.ParseSortField(v.sort)
	if err != nil {
		return ticketview.SortState{}, err
	}
	dir, err := ticketview.ParseDirection(v.dir)
	if err != nil {
		return ticketview.SortState{}, err
	}
	return ticketview.SortState{Field: field, Direction: dir}, nil
}

func (v *viewFlags) location(def *time.Location) (*time.Location, error) {
	if v.tz == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(v.tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", v.tz, err)
	}
	return loc, nil
}

// actingAs loads the profile a command runs as.
func actingAs(ctx context.Context, s *session, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("--as is required")
	}
	profile, err := s.services.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if !profile.IsActive {
		return nil, fmt.Errorf("profile %s is inactive", userID)
	}
	return profile, nil
}
