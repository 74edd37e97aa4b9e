package ledger

import (
	"encoding/json"
	"fmt"
)

// EvidenceRecord is the unit persisted on a chain. ContentAddress (cid) and
// digest (sha256) are set together at upload time and never mutated; the
// chaincode enforces key uniqueness on EvidenceID.
type EvidenceRecord struct {
	EvidenceID      string         `json:"evidenceId"`
	InvestigationID string         `json:"investigationId"`
	Description     string         `json:"description"`
	CID             string         `json:"cid"`
	SHA256          string         `json:"sha256"`
	Metadata        RecordMetadata `json:"metadata"`
	RecordedBy      string         `json:"recordedBy,omitempty"`
	RecordedByRole  string         `json:"recordedByRole,omitempty"`
	RecordedAt      string         `json:"recordedAt,omitempty"`
	Chain           string         `json:"chain,omitempty"`
}

// RecordMetadata is the merged system + caller metadata attached to a record.
// Older chaincode versions store it as a JSON-encoded string rather than an
// object, so unmarshaling accepts both encodings.
type RecordMetadata map[string]any

// UnmarshalJSON decodes either a JSON object or a string containing a
// JSON-encoded object.
func (m *RecordMetadata) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		*m = obj
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("metadata is neither an object nor a string: %w", err)
	}
	if s == "" {
		*m = nil
		return nil
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return fmt.Errorf("string-encoded metadata: %w", err)
	}
	*m = obj
	return nil
}

// stringField returns a metadata value as a string, or "" when absent or not
// a string.
func (m RecordMetadata) stringField(key string) string {
	v, _ := m[key].(string)
	return v
}

// FileName is the original filename captured at upload time.
func (m RecordMetadata) FileName() string { return m.stringField("fileName") }

// MimeType is the MIME type captured at upload time.
func (m RecordMetadata) MimeType() string { return m.stringField("mimeType") }

// Submission is the payload of an AddEvidence write transaction. The
// submitter's identity travels separately as transient data.
type Submission struct {
	EvidenceID      string
	InvestigationID string
	Description     string
	CID             string
	SHA256          string
	MetadataJSON    []byte
}

// Submitter identifies who is recording the evidence. It is attached to the
// transaction as transient data: the chaincode sees it, but it is excluded
// from the permanent transaction payload.
type Submitter struct {
	UserID string
	Role   string
}
