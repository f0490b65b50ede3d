package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:   "Pendiente",
	StatusConfirmed: "Confirmada",
	StatusCompleted: "Completada",
	StatusCancelled: "Cancelada",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal reports whether no further status transition is accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label is the client-facing display name.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus accepts a canonical status or its display label, ignoring case.
func ParseStatus(raw string) (Status, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for s, label := range statusLabels {
		if raw == string(s) || raw == strings.ToLower(label) {
			return s, true
		}
	}
	return "", false
}

type Appointment struct {
	ID             string `json:"id"`
	Status         Status `json:"status"`
	UserName       string `json:"userName"`
	UserEmail      string `json:"userEmail,omitempty"`
	UserPhone      string `json:"userPhone,omitempty"`
	Reason         string `json:"reason,omitempty"`
	PreferredDate  string `json:"preferredDate,omitempty"`
	PreferredTime  string `json:"preferredTime,omitempty"`
	DateTime       string `json:"dateTime,omitempty"`
	AssignedWorker string `json:"assignedWorker,omitempty"`
	AdminMessage   string `json:"adminMessage,omitempty"`

	ConfirmedBy        string     `json:"confirmedBy,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	CompletedBy        string     `json:"completedBy,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`

	DiscountApplied    bool   `json:"discountApplied,omitempty"`
	DiscountPercentage int    `json:"discountPercentage,omitempty"`
	OriginalPrice      string `json:"originalPrice,omitempty"`
	DiscountedPrice    string `json:"discountedPrice,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// EffectiveDate is the scheduled timestamp when set, otherwise the requested
// slot composed from preferredDate and preferredTime.
func (a Appointment) EffectiveDate() string {
	if a.DateTime != "" {
		return a.DateTime
	}
	if a.PreferredDate == "" {
		return ""
	}
	if a.PreferredTime == "" {
		return a.PreferredDate
	}
	return a.PreferredDate + "T" + a.PreferredTime
}
