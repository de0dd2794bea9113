package portfolio

import (
	"context"
	"time"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Counter names accepted by Stats.Increment.
const (
	CounterCVView     = "cv-view"
	CounterCVDownload = "cv-download"
	CounterVisitor    = "visitor"
)

// Stats manages the public site counters.
type Stats struct {
	doc *storage.Document[models.Stats]
	now func() time.Time
}

// NewStats creates the stats service.
func NewStats(store storage.Provider) *Stats {
	return &Stats{
		doc: storage.NewDocument(store, StatsDoc, defaultStats),
		now: time.Now,
	}
}

func defaultStats() models.Stats {
	return models.Stats{MonthlyVisitors: make([]int, 12)}
}

// Get returns the current counters.
func (s *Stats) Get(_ context.Context) (models.Stats, error) {
	st, err := s.doc.Get()
	if err != nil {
		return st, err
	}
	fixMonths(&st)
	return st, nil
}

// Increment bumps one counter. Visitors also count toward the current
// calendar month.
func (s *Stats) Increment(_ context.Context, counter string) (models.Stats, error) {
	switch counter {
	case CounterCVView, CounterCVDownload, CounterVisitor:
	default:
		return models.Stats{}, errUnknownCounter(counter)
	}
	return s.doc.Update(func(st *models.Stats) error {
		now := s.now().UTC()
		fixMonths(st)
		switch counter {
		case CounterCVView:
			st.CVViews++
		case CounterCVDownload:
			st.CVDownloads++
		case CounterVisitor:
			st.Visitors++
			st.MonthlyVisitors[now.Month()-1]++
		}
		st.LastUpdated = now
		return nil
	})
}

func fixMonths(st *models.Stats) {
	if len(st.MonthlyVisitors) == 12 {
		return
	}
	months := make([]int, 12)
	copy(months, st.MonthlyVisitors)
	st.MonthlyVisitors = months
}
