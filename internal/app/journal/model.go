package journal

import (
	"time"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusSubmitted       Status = "submitted"
	StatusConfirmed       Status = "confirmed"
	StatusRejected        Status = "rejected"
	StatusUnknown         Status = "unknown"
	StatusResolvedPresent Status = "resolved_present"
	StatusResolvedAbsent  Status = "resolved_absent"
)

// Entry tracks one submission. It never holds record contents.
type Entry struct {
	Id         int       `gorm:"primaryKey;autoIncrement" json:"-"`
	EntryId    string    `gorm:"uniqueIndex" json:"entry_id"`
	UseCase    string    `json:"use_case"`
	Target     string    `gorm:"index" json:"target"`
	Signature  string    `json:"signature,omitempty"`
	Status     Status    `gorm:"index" json:"status"`
	ReasonCode string    `json:"reason_code,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Checks     int       `json:"checks"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "submission_journal"
}

// Open reports whether the entry still waits for an answer.
func (e Entry) Open() bool {
	return e.Status == StatusPending || e.Status == StatusUnknown
}
