package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

const (
	stationSampleSize = 10
	stationCapacity   = 200
)

// PassengerFlowService synthesizes the 24-hour ridership curve and a
// ranked list of station loads.
type PassengerFlowService struct {
	sched store.ScheduleStore
	clock Clock
}

// NewPassengerFlowService creates a passenger flow model over the
// schedule store.
func NewPassengerFlowService(sched store.ScheduleStore, clock Clock) *PassengerFlowService {
	return &PassengerFlowService{sched: sched, clock: clock}
}

// Flow returns the hourly curve and station loads. Station loads are
// stable-sorted descending by load percentage, so equal percentages keep
// their sampled order.
func (s *PassengerFlowService) Flow(ctx context.Context) model.PassengerFlowSnapshot {
	currentHour := s.clock.Now().Hour()

	hourly := make([]model.HourlyLoad, 0, 24)
	for hour := 0; hour < 24; hour++ {
		load := hourlyBase(hour)
		if load < 0 {
			load = 0
		}
		hourly = append(hourly, model.HourlyLoad{
			Hour:       fmt.Sprintf("%02d:00", hour),
			Passengers: load,
			IsCurrent:  hour == currentHour,
		})
	}

	stops, err := s.sched.SampleStops(ctx, stationSampleSize)
	if err != nil {
		log.Printf("[service] stop sample for passenger flow failed: %v", err)
		stops = nil
	}

	loads := make([]model.StationLoad, 0, len(stops))
	for _, stop := range stops {
		current := intBetween(5, 150)
		loads = append(loads, model.StationLoad{
			StopName:       stop.Name,
			CurrentLoad:    current,
			Capacity:       stationCapacity,
			LoadPercentage: round1(float64(current) / stationCapacity * 100),
			WaitingTime:    intBetween(1, 8),
		})
	}
	sort.SliceStable(loads, func(i, j int) bool {
		return loads[i].LoadPercentage > loads[j].LoadPercentage
	})

	return model.PassengerFlowSnapshot{HourlyData: hourly, StationLoads: loads}
}

// hourlyBase draws the passenger count for one hour bucket from the
// band-based base load plus uniform noise.
func hourlyBase(hour int) int {
	switch {
	case hour >= 6 && hour <= 9: // morning rush
		return 800 + intBetween(-100, 200)
	case hour >= 16 && hour <= 19: // evening rush
		return 750 + intBetween(-100, 200)
	case hour >= 10 && hour <= 15: // midday
		return 400 + intBetween(-50, 100)
	case hour >= 20 && hour <= 23: // evening
		return 300 + intBetween(-50, 100)
	default: // night, early morning
		return 50 + intBetween(-20, 50)
	}
}
