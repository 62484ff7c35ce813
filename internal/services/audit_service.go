package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/koweyli/vantage-console/internal/logger"
	"github.com/koweyli/vantage-console/internal/metrics"
	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/store"
)

// Provenance carries the request origin attached to an audit entry. A nil
// Provenance marks a system-originated action.
type Provenance struct {
	IP        string
	UserAgent string
}

// AuditService wraps the audit store with entry construction (id, timestamp,
// IP formatting, best-effort geolocation) and the export pipeline.
type AuditService struct {
	store        *store.AuditStore
	geo          *GeoService
	downloadsDir string
}

// NewAuditService builds the service; exports land in downloadsDir.
func NewAuditService(st *store.AuditStore, geo *GeoService, downloadsDir string) *AuditService {
	return &AuditService{store: st, geo: geo, downloadsDir: downloadsDir}
}

// Record stamps and inserts a new entry. The geolocation lookup is awaited
// inline but bounded; its failure degrades to a placeholder and never aborts
// the write.
func (s *AuditService) Record(ctx context.Context, userID int, username, action, module, details, status string, prov *Provenance) models.AuditEntry {
	rawIP := "system"
	userAgent := "system"
	if prov != nil {
		rawIP = prov.IP
		userAgent = prov.UserAgent
	}

	formatted := LocationSystem
	if rawIP != "system" {
		formatted = FormatIP(rawIP)
	}

	entry := models.AuditEntry{
		ID:        entryID(),
		UserID:    userID,
		Username:  username,
		Action:    action,
		Module:    module,
		Details:   details,
		IPAddress: formatted,
		RawIP:     rawIP,
		Location:  s.geo.Lookup(ctx, rawIP),
		UserAgent: userAgent,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
	}

	s.store.Insert(entry)
	metrics.IncAuditEntry()
	logger.WithFields(map[string]interface{}{
		"username": username,
		"action":   action,
		"module":   module,
		"status":   status,
	}).Info("audit entry recorded")
	return entry
}

// Query forwards to the store's filter/paginate pipeline.
func (s *AuditService) Query(f store.AuditFilter, page, limit int) ([]models.AuditEntry, int) {
	return s.store.Query(f, page, limit)
}

// Stats forwards to the store's aggregation.
func (s *AuditService) Stats(userID *int) models.AuditStats {
	return s.store.Stats(userID)
}

// Delete removes one entry by id.
func (s *AuditService) Delete(id string) (models.AuditEntry, error) {
	return s.store.Delete(id)
}

// DeleteMany removes a batch of entries and returns the deleted count.
func (s *AuditService) DeleteMany(ids []string) int {
	return s.store.DeleteMany(ids)
}

// ExportResult references a generated artifact. For non-xlsx formats the URL
// is synthesized without generating a file and is advisory only.
type ExportResult struct {
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename,omitempty"`
	RecordCount int    `json:"recordCount"`
}

// Export applies the same filter chain as Query without pagination, projects
// the entries into labeled rows and writes an XLSX workbook into the
// downloads directory.
func (s *AuditService) Export(f store.AuditFilter, format string) (ExportResult, error) {
	entries := s.store.All(f)
	date := time.Now().UTC().Format("2006-01-02")

	if format != "xlsx" {
		name := fmt.Sprintf("audit_logs_%s.%s", date, format)
		return ExportResult{DownloadURL: "/downloads/" + name, RecordCount: len(entries)}, nil
	}

	if err := os.MkdirAll(s.downloadsDir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("ensure downloads directory: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Audit Logs"
	idx, err := wb.NewSheet(sheet)
	if err != nil {
		return ExportResult{}, fmt.Errorf("create worksheet: %w", err)
	}
	wb.SetActiveSheet(idx)
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return ExportResult{}, fmt.Errorf("drop default worksheet: %w", err)
	}

	headers := []string{"Time", "User ID", "Username", "Module", "Action", "Details", "Status", "IP Address", "Location", "User Agent"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.SetCellValue(sheet, cell, h); err != nil {
			return ExportResult{}, fmt.Errorf("write header: %w", err)
		}
	}

	for row, e := range entries {
		values := []any{
			displayTime(e.Timestamp),
			e.UserID,
			e.Username,
			ModuleDisplayName(e.Module),
			ActionDisplayName(e.Action),
			e.Details,
			statusDisplayName(e.Status),
			orDash(e.IPAddress),
			orDefault(e.Location, LocationUnknown),
			orDash(e.UserAgent),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return ExportResult{}, fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	widths := []float64{18, 8, 12, 14, 10, 30, 8, 16, 22, 25}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := wb.SetColWidth(sheet, col, col, w); err != nil {
			return ExportResult{}, fmt.Errorf("set column width: %w", err)
		}
	}

	name := fmt.Sprintf("audit_logs_%s_%d.xlsx", date, time.Now().UnixMilli())
	path := filepath.Join(s.downloadsDir, name)
	if err := wb.SaveAs(path); err != nil {
		return ExportResult{}, fmt.Errorf("save workbook: %w", err)
	}

	logger.WithFields(map[string]interface{}{"file": path, "records": len(entries)}).Info("audit log exported")
	return ExportResult{DownloadURL: "/downloads/" + name, Filename: name, RecordCount: len(entries)}, nil
}

// ModuleDisplayName localizes a module code for export, falling back to the
// raw code.
func ModuleDisplayName(module string) string {
	names := map[string]string{
		"auth":       "Authentication",
		"user":       "User Management",
		"profile":    "Profile",
		"permission": "Permissions",
		"system":     "System Settings",
	}
	if name, ok := names[module]; ok {
		return name
	}
	return module
}

// ActionDisplayName localizes an action code for export, falling back to the
// raw code.
func ActionDisplayName(action string) string {
	names := map[string]string{
		"login":  "Sign in",
		"logout": "Sign out",
		"create": "Create",
		"update": "Update",
		"delete": "Delete",
		"view":   "View",
	}
	if name, ok := names[action]; ok {
		return name
	}
	return action
}

func statusDisplayName(status string) string {
	if status == models.AuditSuccess {
		return "Success"
	}
	return "Failed"
}

func displayTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func orDash(s string) string { return orDefault(s, "-") }

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// entryID builds the composite id: epoch milliseconds plus a random base36
// suffix, matching the ids already present in persisted logs.
func entryID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to the clock; uniqueness within a millisecond is lost
		// but ids remain usable.
		return strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.FormatInt(time.Now().UnixNano()%997, 36)
	}
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix
}
