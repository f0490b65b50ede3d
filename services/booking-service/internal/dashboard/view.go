// Package dashboard derives a worker's statistics and appointment list and
// routes that worker's actions into the lifecycle machine.
package dashboard

import (
	"sort"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
}

// ComputeStats counts the worker's assigned appointments. Cancelled
// appointments are left out of every count, total included.
func ComputeStats(appts []model.Appointment, workerID string) Stats {
	var s Stats
	for _, a := range appts {
		if a.AssignedWorker != workerID || a.Status == model.StatusCancelled {
			continue
		}
		s.Total++
		switch a.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusConfirmed:
			s.Confirmed++
		case model.StatusCompleted:
			s.Completed++
		}
	}
	return s
}

// List returns the worker's assigned appointments, newest effective date
// first. Equal dates keep collection order.
func List(appts []model.Appointment, workerID string) []model.Appointment {
	out := make([]model.Appointment, 0)
	for _, a := range appts {
		if a.AssignedWorker == workerID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate() > out[j].EffectiveDate()
	})
	return out
}

type View struct {
	WorkerID     string              `json:"worker_id"`
	WorkerName   string              `json:"worker_name,omitempty"`
	Stats        Stats               `json:"stats"`
	Appointments []model.Appointment `json:"appointments"`
}

func derive(appts []model.Appointment, w model.Worker) View {
	return View{
		WorkerID:     w.ID,
		WorkerName:   w.Name,
		Stats:        ComputeStats(appts, w.ID),
		Appointments: List(appts, w.ID),
	}
}
