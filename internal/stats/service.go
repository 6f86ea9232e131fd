package stats

import (
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// Service bundles the tracker, the event recorders, the analytics queries
// and the exporter over one Store.
type Service struct {
	*Store
	Tracker   *Tracker
	Analytics *Analytics
	Exporter  *Exporter
	Clock     clockwork.Clock
}

// New builds a Service. Pass a nil db to get a disabled service.
func New(db *gorm.DB, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	store := NewStore(db, clock)
	tracker := NewTracker(store, clock)

	return &Service{
		Store:     store,
		Tracker:   tracker,
		Analytics: NewAnalytics(store),
		Exporter:  NewExporter(store, tracker),
		Clock:     clock,
	}
}
