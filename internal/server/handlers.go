package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/coc-platform/evidence-service/pkg/evidence"
	"github.com/coc-platform/evidence-service/pkg/ledger"
)

// maxUploadBytes caps a single evidence payload at 500MB.
const maxUploadBytes = 500 << 20

// multipartMemoryBytes is the in-memory threshold before multipart parts
// spill to disk.
const multipartMemoryBytes = 32 << 20

// UploadHandler accepts a multipart evidence upload and runs the full
// pipeline. Form fields: file, investigationId, description, userId,
// userRole, chain (optional, default hot), metadata (optional JSON object).
func (a *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	var meta map[string]any
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid metadata JSON: %v", err))
			return
		}
	}

	chain := r.FormValue("chain")
	if chain == "" {
		chain = ledger.ChainHot.String()
	}

	result, err := a.svc.Upload(r.Context(), evidence.UploadRequest{
		File:            file,
		FileName:        header.Filename,
		FileSize:        header.Size,
		MimeType:        header.Header.Get("Content-Type"),
		InvestigationID: r.FormValue("investigationId"),
		Description:     r.FormValue("description"),
		UserID:          r.FormValue("userId"),
		UserRole:        r.FormValue("userRole"),
		Chain:           chain,
		Metadata:        meta,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"evidenceId": result.EvidenceID,
		"cid":        result.CID,
		"sha256":     result.SHA256,
		"txId":       result.TxID,
		"chain":      result.Chain,
		"message":    "Evidence uploaded and recorded successfully",
	})
}

// GetEvidenceHandler returns the ledger record for an evidence id.
// Query parameters: chain (optional, default hot).
func (a *App) GetEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	evidenceID := chi.URLParam(r, "evidenceId")
	chain := r.URL.Query().Get("chain")
	if chain == "" {
		chain = ledger.ChainHot.String()
	}

	record, err := a.svc.GetRecord(r.Context(), chain, evidenceID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"evidence": record,
	})
}

// GetFileHandler streams the payload behind an evidence record back to the
// caller. Query parameters: chain (optional, default hot), verify (optional,
// default true).
func (a *App) GetFileHandler(w http.ResponseWriter, r *http.Request) {
	evidenceID := chi.URLParam(r, "evidenceId")
	chain := r.URL.Query().Get("chain")
	if chain == "" {
		chain = ledger.ChainHot.String()
	}
	verify := r.URL.Query().Get("verify") != "false"

	file, err := a.svc.GetFile(r.Context(), chain, evidenceID, verify)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Bytes)))
	_, _ = w.Write(file.Bytes)
}

// HealthHandler probes the content store and both gateway peers in parallel.
// Returns 200 only when every dependency answers.
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	storeOK, hotOK, coldOK := true, true, true

	var g errgroup.Group
	if a.store != nil {
		g.Go(func() error {
			storeOK = a.store.HealthCheck(ctx)
			return nil
		})
	}
	if a.chains != nil {
		g.Go(func() error {
			hotOK = a.chains.Ping(ctx, ledger.ChainHot)
			return nil
		})
		g.Go(func() error {
			coldOK = a.chains.Ping(ctx, ledger.ChainCold)
			return nil
		})
	}
	_ = g.Wait()

	status := "healthy"
	code := http.StatusOK
	if !storeOK || !hotOK || !coldOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"service":   "evidence-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]bool{
			"ipfs":      storeOK,
			"hotChain":  hotOK,
			"coldChain": coldOK,
		},
	})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, evidence.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, evidence.ErrLedgerNotFound), errors.Is(err, evidence.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, evidence.ErrLedgerUnreachable), errors.Is(err, evidence.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
