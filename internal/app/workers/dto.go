package workers

import (
	"satch-client/internal/app/ledgererr"
	reasoncodes "satch-client/pkg/reason_codes"
	"satch-client/pkg/utilities"
)

type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	// JobUnknown means the submission may or may not have landed; see the journal entry.
	JobUnknown JobStatus = "unknown"
)

// LedgerJobDto is one queued write. Only the fields of its kind are read.
type LedgerJobDto struct {
	JobId string `json:"job_id"`
	Kind  string `json:"kind"`

	Name            string `json:"name,omitempty"`
	LicensePlate    string `json:"license_plate,omitempty"`
	DriverAuthority string `json:"driver_authority,omitempty"`

	// Driver is the driver authority, as in the REST routes. LicensePlate is used when it is empty.
	Driver      string `json:"driver,omitempty"`
	Reviewer    string `json:"reviewer,omitempty"`
	Rating      uint8  `json:"rating,omitempty"`
	MessageHash string `json:"message_hash,omitempty"`
}

type LedgerJobResultDto struct {
	JobId       string                 `json:"job_id"`
	Kind        string                 `json:"kind"`
	Status      JobStatus              `json:"status"`
	Target      string                 `json:"target,omitempty"`
	Signature   string                 `json:"signature,omitempty"`
	JournalId   string                 `json:"journal_id,omitempty"`
	Index       *uint64                `json:"index,omitempty"`
	Attempts    int                    `json:"attempts,omitempty"`
	ReasonCode  reasoncodes.ReasonCode `json:"reason_code,omitempty"`
	RetryClass  ledgererr.RetryClass   `json:"retry_class,omitempty"`
	Error       string                 `json:"error,omitempty"`
	RequestBody []byte                 `json:"request_body,omitempty"`
}

func (ljr LedgerJobResultDto) Serialize() ([]byte, error) {
	return utilities.Serialize[LedgerJobResultDto](ljr)
}
