// Package audit keeps a local, queryable trail of evidence pipeline
// operations in SQLite. The trail is append-only; retention is the only
// deletion path.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recorder accepts pipeline events. Recording is best effort: an audit
// failure must never fail the operation being audited.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Store provides append-only operations for audit event records.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore creates a Store on the given database handle.
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates or updates the audit table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&EventRecord{}); err != nil {
		return fmt.Errorf("auto-migrate audit_events: %w", err)
	}
	return nil
}

// Append creates a new immutable audit event record.
func (s *Store) Append(record *EventRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Record implements Recorder. Failures are logged and swallowed.
func (s *Store) Record(ctx context.Context, event Event) {
	record := &EventRecord{
		ID:              uuid.NewString(),
		Action:          event.Action,
		Actor:           event.Actor,
		ActorRole:       event.ActorRole,
		EvidenceID:      event.EvidenceID,
		InvestigationID: event.InvestigationID,
		Chain:           event.Chain,
		Outcome:         event.Outcome,
		TxID:            event.TxID,
		Reason:          event.Reason,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		s.logger.Error("failed to record audit event",
			"action", event.Action, "evidenceId", event.EvidenceID, "error", err)
	}
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Action     string
	Actor      string
	Chain      string
	EvidenceID string
	Outcome    string
}

// List returns paginated audit events ordered by created_at DESC, id DESC
// (newest first). pageToken is "<RFC3339Nano>|<id>", the position of the last
// record on the previous page; the id component breaks ties between events
// sharing a timestamp so none are skipped across a page boundary. The third
// result is the total count matching the filter.
func (s *Store) List(filter ListFilter, pageSize int, pageToken string) ([]EventRecord, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	base := s.db.Model(&EventRecord{})
	if filter.Action != "" {
		base = base.Where("action = ?", filter.Action)
	}
	if filter.Actor != "" {
		base = base.Where("actor = ?", filter.Actor)
	}
	if filter.Chain != "" {
		base = base.Where("chain = ?", filter.Chain)
	}
	if filter.EvidenceID != "" {
		base = base.Where("evidence_id = ?", filter.EvidenceID)
	}
	if filter.Outcome != "" {
		base = base.Where("outcome = ?", filter.Outcome)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count audit events: %w", err)
	}

	query := base.Session(&gorm.Session{}).Order("created_at DESC, id DESC").Limit(pageSize + 1)
	if pageToken != "" {
		cutoff, lastID, err := parsePageToken(pageToken)
		if err != nil {
			return nil, "", 0, err
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cutoff, cutoff, lastID)
	}

	var records []EventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list audit events: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		last := records[pageSize-1]
		nextToken = last.CreatedAt.Format(time.RFC3339Nano) + "|" + last.ID
		records = records[:pageSize]
	}

	return records, nextToken, int(total), nil
}

func parsePageToken(token string) (time.Time, string, error) {
	ts, id, ok := strings.Cut(token, "|")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("invalid page token")
	}
	cutoff, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid page token: %w", err)
	}
	return cutoff, id, nil
}

// DeleteOlderThan deletes audit events created before the cutoff. Returns the
// number of deleted records.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&EventRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old audit events: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// StartRetentionLoop deletes events older than retention once a day until ctx
// is cancelled.
func (s *Store) StartRetentionLoop(ctx context.Context, retention time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.DeleteOlderThan(time.Now().Add(-retention))
			if err != nil {
				s.logger.Error("audit retention sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				s.logger.Info("audit retention sweep", "deleted", deleted)
			}
		}
	}
}
