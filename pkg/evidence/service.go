// Package evidence composes the digest engine, content store, and ledger
// gateway into the upload and retrieve pipelines.
//
// The pipelines are strictly sequential and nothing is retried: every step's
// failure aborts the rest of the pipeline and surfaces to the caller. A
// ledger failure after a successful store put leaves an orphaned, pinned blob
// behind; the audit trail records the failure so an operator sweep can
// reclaim it.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coc-platform/evidence-service/pkg/audit"
	"github.com/coc-platform/evidence-service/pkg/digest"
	"github.com/coc-platform/evidence-service/pkg/ledger"
)

// ContentStore stores opaque payloads by content address.
type ContentStore interface {
	Put(ctx context.Context, r io.Reader) (string, error)
	Get(ctx context.Context, cid string) ([]byte, error)
	HealthCheck(ctx context.Context) bool
}

// Ledger submits and queries evidence records on a selected chain.
type Ledger interface {
	Submit(ctx context.Context, chain ledger.Chain, sub ledger.Submission, by ledger.Submitter) (string, error)
	Evaluate(ctx context.Context, chain ledger.Chain, evidenceID string) (*ledger.EvidenceRecord, error)
}

// Service is the evidence orchestrator. All dependencies are injected at
// construction; the service holds no mutable state and is safe for
// concurrent use.
type Service struct {
	store  ContentStore
	ledger Ledger
	audit  audit.Recorder
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithAuditRecorder wires a local audit trail for pipeline operations.
func WithAuditRecorder(rec audit.Recorder) Option {
	return func(s *Service) { s.audit = rec }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides evidence id generation. Used by tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates the orchestrator.
func NewService(store ContentStore, lgr Ledger, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  store,
		ledger: lgr,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadRequest carries one validated-by-the-caller-for-shape, but not yet
// validated-for-content, evidence upload.
type UploadRequest struct {
	// File is the uploaded payload. It is read twice: once to digest, once
	// to store, with a seek back to the start in between.
	File     io.ReadSeeker
	FileName string
	FileSize int64
	MimeType string

	InvestigationID string
	Description     string
	UserID          string
	UserRole        string

	// Chain is the raw selector ("hot" or "cold").
	Chain string

	// Metadata holds caller-supplied extra fields. Keys the system sets
	// itself (fileName, fileSize, mimeType, uploadedAt) cannot be
	// overridden by the caller.
	Metadata map[string]any
}

// UploadResult is returned once the record is ledger-confirmed.
type UploadResult struct {
	EvidenceID string `json:"evidenceId"`
	CID        string `json:"cid"`
	SHA256     string `json:"sha256"`
	TxID       string `json:"txId"`
	Chain      string `json:"chain"`
}

// FileResult carries retrieved evidence bytes plus the presentation fields
// recorded at upload time.
type FileResult struct {
	Bytes    []byte
	FileName string
	MimeType string
	Verified bool
}

// Upload runs the full pipeline: validate, digest, store, record on the
// selected chain. Steps are not wrapped in a compensating transaction; a
// failure after the store put leaves the blob pinned but unreferenced.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	chain, err := validateUpload(req)
	if err != nil {
		return nil, err
	}

	evidenceID := s.newID()
	s.logger.Info("processing evidence upload",
		"evidenceId", evidenceID,
		"investigationId", req.InvestigationID,
		"fileName", req.FileName,
		"size", req.FileSize,
		"chain", chain,
	)

	sha, err := digest.FromReader(req.File)
	if err != nil {
		s.recordUpload(ctx, req, evidenceID, chain, "", audit.OutcomeFailure, err)
		return nil, fmt.Errorf("%w: %v", ErrDigest, err)
	}
	if _, err := req.File.Seek(0, io.SeekStart); err != nil {
		s.recordUpload(ctx, req, evidenceID, chain, "", audit.OutcomeFailure, err)
		return nil, fmt.Errorf("%w: rewind payload: %v", ErrDigest, err)
	}

	cid, err := s.store.Put(ctx, req.File)
	if err != nil {
		s.recordUpload(ctx, req, evidenceID, chain, "", audit.OutcomeFailure, err)
		return nil, fmt.Errorf("store evidence payload: %w", err)
	}

	metaJSON, err := json.Marshal(s.buildMetadata(req))
	if err != nil {
		s.recordUpload(ctx, req, evidenceID, chain, "", audit.OutcomeFailure, err)
		return nil, fmt.Errorf("%w: encode metadata: %v", ErrValidation, err)
	}

	txID, err := s.ledger.Submit(ctx, chain,
		ledger.Submission{
			EvidenceID:      evidenceID,
			InvestigationID: req.InvestigationID,
			Description:     req.Description,
			CID:             cid,
			SHA256:          sha,
			MetadataJSON:    metaJSON,
		},
		ledger.Submitter{UserID: req.UserID, Role: req.UserRole},
	)
	if err != nil {
		// The blob stays pinned with no ledger reference; the audit
		// trail is what the operator GC sweep works from.
		s.recordUpload(ctx, req, evidenceID, chain, "", audit.OutcomeFailure, err)
		return nil, fmt.Errorf("record evidence on ledger: %w", err)
	}

	s.recordUpload(ctx, req, evidenceID, chain, txID, audit.OutcomeSuccess, nil)
	s.logger.Info("evidence upload completed",
		"evidenceId", evidenceID, "cid", cid, "txId", txID, "chain", chain)

	return &UploadResult{
		EvidenceID: evidenceID,
		CID:        cid,
		SHA256:     sha,
		TxID:       txID,
		Chain:      chain.String(),
	}, nil
}

// GetRecord fetches the evidence record from the selected chain.
func (s *Service) GetRecord(ctx context.Context, chainSelector, evidenceID string) (*ledger.EvidenceRecord, error) {
	chain, err := parseRetrieval(chainSelector, evidenceID)
	if err != nil {
		return nil, err
	}

	record, err := s.ledger.Evaluate(ctx, chain, evidenceID)
	if err != nil {
		s.recordRetrieve(ctx, audit.ActionRetrieve, evidenceID, chain, audit.OutcomeFailure, err)
		return nil, fmt.Errorf("query evidence record: %w", err)
	}

	s.recordRetrieve(ctx, audit.ActionRetrieve, evidenceID, chain, audit.OutcomeSuccess, nil)
	return record, nil
}

// GetFile fetches the payload behind an evidence record and, when verify is
// set, re-derives the digest and compares it byte for byte against the one
// recorded at upload time before releasing anything to the caller.
func (s *Service) GetFile(ctx context.Context, chainSelector, evidenceID string, verify bool) (*FileResult, error) {
	chain, err := parseRetrieval(chainSelector, evidenceID)
	if err != nil {
		return nil, err
	}

	record, err := s.ledger.Evaluate(ctx, chain, evidenceID)
	if err != nil {
		s.recordRetrieve(ctx, audit.ActionRetrieveFile, evidenceID, chain, audit.OutcomeFailure, err)
		return nil, fmt.Errorf("query evidence record: %w", err)
	}

	data, err := s.store.Get(ctx, record.CID)
	if err != nil {
		s.recordRetrieve(ctx, audit.ActionRetrieveFile, evidenceID, chain, audit.OutcomeFailure, err)
		return nil, fmt.Errorf("fetch evidence payload: %w", err)
	}

	if verify {
		computed := digest.FromBytes(data)
		if computed != record.SHA256 {
			s.logger.Error("hash verification failed",
				"evidenceId", evidenceID,
				"expected", record.SHA256,
				"computed", computed,
			)
			err := fmt.Errorf("%w: evidence %s", ErrIntegrityMismatch, evidenceID)
			s.recordRetrieve(ctx, audit.ActionRetrieveFile, evidenceID, chain, audit.OutcomeFailure, err)
			return nil, err
		}
		s.logger.Info("hash verified", "evidenceId", evidenceID)
	}

	s.recordRetrieve(ctx, audit.ActionRetrieveFile, evidenceID, chain, audit.OutcomeSuccess, nil)
	return &FileResult{
		Bytes:    data,
		FileName: record.Metadata.FileName(),
		MimeType: record.Metadata.MimeType(),
		Verified: verify,
	}, nil
}

// buildMetadata merges system-derived fields with caller extras. System
// fields win on key collisions.
func (s *Service) buildMetadata(req UploadRequest) map[string]any {
	meta := map[string]any{
		"fileName":   req.FileName,
		"fileSize":   req.FileSize,
		"mimeType":   req.MimeType,
		"uploadedAt": s.now().UTC().Format(time.RFC3339),
	}
	for k, v := range req.Metadata {
		if _, reserved := meta[k]; !reserved {
			meta[k] = v
		}
	}
	return meta
}

// validateUpload rejects incomplete requests before any I/O happens.
func validateUpload(req UploadRequest) (ledger.Chain, error) {
	if req.File == nil {
		return "", fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	for _, field := range []struct{ name, value string }{
		{"investigationId", req.InvestigationID},
		{"description", req.Description},
		{"userId", req.UserID},
		{"userRole", req.UserRole},
	} {
		if field.value == "" {
			return "", fmt.Errorf("%w: missing required field %q", ErrValidation, field.name)
		}
	}
	chain, err := ledger.ParseChain(req.Chain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return chain, nil
}

func parseRetrieval(chainSelector, evidenceID string) (ledger.Chain, error) {
	if evidenceID == "" {
		return "", fmt.Errorf("%w: missing evidence id", ErrValidation)
	}
	chain, err := ledger.ParseChain(chainSelector)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return chain, nil
}

func (s *Service) recordUpload(ctx context.Context, req UploadRequest, evidenceID string, chain ledger.Chain, txID, outcome string, cause error) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Action:          audit.ActionUpload,
		Actor:           req.UserID,
		ActorRole:       req.UserRole,
		EvidenceID:      evidenceID,
		InvestigationID: req.InvestigationID,
		Chain:           chain.String(),
		Outcome:         outcome,
		TxID:            txID,
	}
	if cause != nil {
		event.Reason = cause.Error()
	}
	s.audit.Record(ctx, event)
}

func (s *Service) recordRetrieve(ctx context.Context, action, evidenceID string, chain ledger.Chain, outcome string, cause error) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Action:     action,
		EvidenceID: evidenceID,
		Chain:      chain.String(),
		Outcome:    outcome,
	}
	if cause != nil {
		event.Reason = cause.Error()
	}
	s.audit.Record(ctx, event)
}
