package dashboard

import (
	"context"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"
)

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// GetSummary builds the admin overview for one day; a zero date means today.
func (s *Service) GetSummary(ctx context.Context, date time.Time) (*Summary, error) {
	if date.IsZero() {
		date = s.now()
	}
	dayStart, dayEnd := dateutil.DayBounds(date, s.loc)

	day, err := s.repo.GetDaySummary(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	day.Date = dayStart.Format(dateutil.DateLayout)

	gyms, err := s.repo.GetGymSeatTotals(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return &Summary{Day: *day, Gyms: gyms}, nil
}
