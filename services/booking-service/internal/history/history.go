// Package history projects a client's appointments into display records.
// Nothing here writes to the store.
package history

import (
	"sort"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Filter struct {
	// Client is matched against userName; empty keeps every appointment.
	Client string
	Status model.Status
	// Date is a calendar date (YYYY-MM-DD).
	Date string
}

type Entry struct {
	Appointment   model.Appointment `json:"appointment"`
	DisplayStatus model.Status      `json:"display_status"`
	StatusLabel   string            `json:"status_label"`
	When          string            `json:"when"`
}

type Result struct {
	Entries []Entry `json:"entries"`
	Empty   bool    `json:"empty"`
}

// DisplayStatus is the status shown to the client. A pending appointment that
// already carries a staff note is shown as cancelled; the stored status is not
// touched.
func DisplayStatus(a model.Appointment) model.Status {
	if a.Status == model.StatusPending && strings.TrimSpace(a.AdminMessage) != "" {
		return model.StatusCancelled
	}
	return a.Status
}

func Build(appts []model.Appointment, f Filter) Result {
	client := strings.TrimSpace(f.Client)
	date := strings.TrimSpace(f.Date)

	kept := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		if client != "" && a.UserName != client {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if date != "" && !strings.HasPrefix(a.DateTime, date) && a.PreferredDate != date {
			continue
		}
		kept = append(kept, a)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].DateTime > kept[j].DateTime
	})

	entries := make([]Entry, 0, len(kept))
	for _, a := range kept {
		shown := DisplayStatus(a)
		entries = append(entries, Entry{
			Appointment:   a,
			DisplayStatus: shown,
			StatusLabel:   shown.Label(),
			When:          a.EffectiveDate(),
		})
	}
	return Result{Entries: entries, Empty: len(entries) == 0}
}
