// Package dashboard computes the admin overview from the appointment list.
package dashboard

import (
	"context"
	"time"

	"github.com/jrsteele09/go-hospital-client/appointments"
)

// Days is the length of the daily window.
const Days = 7

type DayCount struct {
	Date  string // YYYY-MM-DD, UTC
	Count int
}

type Summary struct {
	TotalAppointments int
	UniquePatients    int
	Daily             []DayCount // oldest first, ending today
	ByStatus          map[appointments.Status]int
}

// Summarize aggregates list as of now. Appointments on days outside the
// window still count toward the totals and status counts.
func Summarize(list []appointments.Appointment, now time.Time) Summary {
	s := Summary{
		TotalAppointments: len(list),
		Daily:             make([]DayCount, Days),
		ByStatus:          make(map[appointments.Status]int, len(appointments.Statuses)),
	}
	for _, st := range appointments.Statuses {
		s.ByStatus[st] = 0
	}

	today := now.UTC().Truncate(24 * time.Hour)
	index := make(map[string]int, Days)
	for i := 0; i < Days; i++ {
		day := today.AddDate(0, 0, i-(Days-1)).Format(time.DateOnly)
		s.Daily[i] = DayCount{Date: day}
		index[day] = i
	}

	patients := make(map[int64]struct{})
	for _, a := range list {
		patients[a.PatientID] = struct{}{}
		if i, ok := index[dayOf(a.Date)]; ok {
			s.Daily[i].Count++
		}
		if _, known := s.ByStatus[a.Status]; known {
			s.ByStatus[a.Status]++
		}
	}
	s.UniquePatients = len(patients)
	return s
}

// dayOf reduces a date or timestamp string to YYYY-MM-DD.
func dayOf(date string) string {
	if len(date) >= len(time.DateOnly) {
		return date[:len(time.DateOnly)]
	}
	return date
}

// Lister is satisfied by appointments.Client.
type Lister interface {
	List(ctx context.Context) ([]appointments.Appointment, error)
}

// Load fetches every appointment and summarizes it.
func Load(ctx context.Context, src Lister, now time.Time) (Summary, error) {
	list, err := src.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(list, now), nil
}
