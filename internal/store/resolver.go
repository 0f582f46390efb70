package store

import (
	"context"
	"log"
	"time"
)

const probeTimeout = 2 * time.Second

// Resolver picks the backing that answers an overview request. The
// database is preferred when its probe and count query both succeed;
// anything else falls back to the flat-file tables. Neither backing
// failing is fatal — the dashboard always renders, worst case with
// zeroed counts.
type Resolver struct {
	db    ScheduleStore
	probe func(ctx context.Context) error
	files ScheduleStore
}

// NewResolver wires the two backings. db and probe may be nil when the
// process runs without a database.
func NewResolver(db ScheduleStore, probe func(ctx context.Context) error, files ScheduleStore) *Resolver {
	return &Resolver{db: db, probe: probe, files: files}
}

// OverviewCounts returns the headline counts plus the label of the
// backing that produced them.
func (r *Resolver) OverviewCounts(ctx context.Context) (Counts, string) {
	if r.db != nil && r.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := r.probe(probeCtx)
		cancel()
		if err == nil {
			counts, err := r.db.Counts(ctx)
			if err == nil {
				return counts, r.db.Label()
			}
			log.Printf("[store] database count query failed, using csv: %v", err)
		} else {
			log.Printf("[store] database unreachable, using csv: %v", err)
		}
	}

	counts, err := r.files.Counts(ctx)
	if err != nil {
		log.Printf("[store] csv counts unavailable: %v", err)
		counts = Counts{}
	}
	return counts, r.files.Label()
}

// DatabaseAvailable reports whether the database backing currently
// answers its liveness probe.
func (r *Resolver) DatabaseAvailable(ctx context.Context) bool {
	if r.db == nil || r.probe == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return r.probe(probeCtx) == nil
}

// Schedule returns the backing used by the simulation endpoints. These
// always read the flat-file tables; only the overview and health panels
// touch the database.
func (r *Resolver) Schedule() ScheduleStore {
	return r.files
}
