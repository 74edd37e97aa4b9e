package audit

import "time"

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Action values for audit events.
const (
	ActionUpload       = "upload"
	ActionRetrieve     = "retrieve"
	ActionRetrieveFile = "retrieve-file"
)

// EventRecord is one immutable entry in the local operation audit trail. It
// complements the on-ledger custody record: the ledger proves what was
// recorded, the trail shows who exercised this service and how it went,
// including attempts that never reached the ledger.
type EventRecord struct {
	ID              string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	Action          string    `gorm:"column:action;index:idx_audit_action_time,priority:1;not null"`
	Actor           string    `gorm:"column:actor;index:idx_audit_actor_time,priority:1"`
	ActorRole       string    `gorm:"column:actor_role"`
	EvidenceID      string    `gorm:"column:evidence_id;index"`
	InvestigationID string    `gorm:"column:investigation_id;index"`
	Chain           string    `gorm:"column:chain"`
	Outcome         string    `gorm:"column:outcome;not null"`
	TxID            string    `gorm:"column:tx_id"`
	Reason          string    `gorm:"column:reason"`
	CreatedAt       time.Time `gorm:"column:created_at;index:idx_audit_action_time,priority:2;index:idx_audit_actor_time,priority:2;autoCreateTime"`
}

// TableName returns the GORM table name.
func (EventRecord) TableName() string { return "audit_events" }

// Event is what pipeline code reports; the store assigns id and timestamp.
type Event struct {
	Action          string
	Actor           string
	ActorRole       string
	EvidenceID      string
	InvestigationID string
	Chain           string
	Outcome         string
	TxID            string
	Reason          string
}
