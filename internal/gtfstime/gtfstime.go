// Package gtfstime handles GTFS wall-clock time strings.
//
// GTFS stop_times encode times as HH:MM:SS relative to the start of the
// service day, and hours may exceed 24 for trips running past midnight
// (e.g. "25:10:00" is 01:10 the next morning). Lexicographic comparison
// of the raw strings misbehaves around midnight, so all comparisons in
// this codebase go through integer seconds-since-service-start.
package gtfstime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SecondsPerDay is one nominal service day.
const SecondsPerDay = 24 * 60 * 60

// Parse converts a GTFS time string (HH:MM:SS or HH:MM, hours may exceed
// 24) to seconds since the start of the service day.
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("gtfstime: empty time string")
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("gtfstime: malformed time %q", s)
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 {
		return 0, fmt.Errorf("gtfstime: malformed hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("gtfstime: malformed minute in %q", s)
	}
	sec := 0
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("gtfstime: malformed second in %q", s)
		}
	}

	return h*3600 + m*60 + sec, nil
}

// DaySeconds returns the seconds elapsed since local midnight for t.
// Always in [0, 86400).
func DaySeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// InWindow reports whether a stop_time with the given departure and
// arrival (seconds since service start) is currently serving a trip at
// instant now (seconds since local midnight, in [0, 86400)).
//
// The heuristic matches when the vehicle passed through the stop within
// the last hour and has not yet departed:
//
//	departure <= now && arrival >= now-1h
//
// The predicate is probed a second time with now shifted by one day so
// that overnight stop_times (hours >= 24) remain visible to a clock that
// has already wrapped past midnight.
func InWindow(departure, arrival, now int) bool {
	for _, t := range [2]int{now, now + SecondsPerDay} {
		if departure <= t && arrival >= t-3600 {
			return true
		}
	}
	return false
}

// Format renders seconds-since-service-start back to HH:MM:SS. Hours are
// not reduced modulo 24, mirroring the GTFS convention.
func Format(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec/60)%60, sec%60)
}
