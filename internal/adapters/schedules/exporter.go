package schedules

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"mazecore/internal/blob"
	"mazecore/pkg/domain"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportFormat selects how an archived run is rendered into artifacts.
type ExportFormat string

const (
	// FormatCSV renders the whole run as a single CSV with Day and Phase columns.
	FormatCSV ExportFormat = "csv"
	// FormatDailyCSV renders one CSV artifact per experiment day, matching the
	// sheets handed to experimenters.
	FormatDailyCSV ExportFormat = "csv_daily"
	// FormatJSON renders the archived run verbatim as JSON.
	FormatJSON ExportFormat = "json"
)

func parseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(s) {
	case FormatCSV, FormatDailyCSV, FormatJSON:
		return ExportFormat(s), true
	default:
		return "", false
	}
}

// ExportArtifact captures one stored blob produced by an export.
type ExportArtifact struct {
	Key         string       `json:"key"`
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	URL         string       `json:"url,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ExportRecord tracks an export request and its resulting artifacts.
type ExportRecord struct {
	ID          string           `json:"id"`
	RunID       string           `json:"run_id"`
	Formats     []ExportFormat   `json:"formats"`
	Status      ExportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ExportArtifact `json:"artifacts,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Formats = append([]ExportFormat(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	}
	return dup
}

// RunSource resolves archived runs for export.
type RunSource interface {
	Run(ctx context.Context, id string) (domain.ScheduleRun, bool, error)
}

// ExportScheduler queues run export requests and exposes their status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, runID string, formats []ExportFormat) (ExportRecord, error)
	GetExport(id string) (ExportRecord, bool)
}

// Worker renders archived runs to blob artifacts asynchronously. Records live
// in memory for the process lifetime; the artifacts themselves are durable in
// the configured blob store.
type Worker struct {
	runs  RunSource
	store blob.Store

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportTask struct {
	id    string
	runID string
}

var _ ExportScheduler = (*Worker)(nil)

// NewWorker constructs an export worker over the given run source and blob store.
func NewWorker(runs RunSource, store blob.Store) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		runs:   runs,
		store:  store,
		queue:  make(chan exportTask, 32),
		jobs:   make(map[string]*ExportRecord),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// EnqueueExport schedules an export job and returns the queued record. The
// run must already exist in the archive.
func (w *Worker) EnqueueExport(ctx context.Context, runID string, formats []ExportFormat) (ExportRecord, error) {
	if w.runs == nil {
		return ExportRecord{}, fmt.Errorf("run source not configured")
	}
	if w.store == nil {
		return ExportRecord{}, fmt.Errorf("blob store not configured")
	}
	if _, ok, err := w.runs.Run(ctx, runID); err != nil {
		return ExportRecord{}, fmt.Errorf("resolve run: %w", err)
	} else if !ok {
		return ExportRecord{}, fmt.Errorf("run %s not found", runID)
	}

	if len(formats) == 0 {
		formats = []ExportFormat{FormatCSV, FormatJSON}
	}
	uniq := make([]ExportFormat, 0, len(formats))
	seen := make(map[ExportFormat]struct{})
	for _, f := range formats {
		if _, dup := seen[f]; dup {
			continue
		}
		if _, ok := parseExportFormat(string(f)); !ok {
			return ExportRecord{}, fmt.Errorf("unsupported export format %s", f)
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	id := newExportID()
	now := time.Now().UTC()
	record := ExportRecord{
		ID:        id,
		RunID:     runID,
		Formats:   uniq,
		Status:    ExportStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	snapshot := record.copy()
	w.mu.Unlock()

	select {
	case w.queue <- exportTask{id: id, runID: runID}:
	default:
		return ExportRecord{}, fmt.Errorf("export queue full")
	}

	return snapshot, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(task exportTask) {
	w.mu.RLock()
	record, ok := w.jobs[task.id]
	w.mu.RUnlock()
	if !ok {
		return
	}
	formats := append([]ExportFormat(nil), record.Formats...)

	w.updateStatus(task.id, ExportStatusRunning, "")

	run, found, err := w.runs.Run(w.ctx, task.runID)
	if err != nil {
		w.fail(task.id, fmt.Sprintf("resolve run: %v", err))
		return
	}
	if !found {
		w.fail(task.id, fmt.Sprintf("run %s missing", task.runID))
		return
	}

	var artifacts []ExportArtifact
	for _, format := range formats {
		rendered, err := materialize(format, run)
		if err != nil {
			w.fail(task.id, err.Error())
			return
		}
		for _, ra := range rendered {
			key := fmt.Sprintf("runs/%s/exports/%s/%s", run.ID, task.id, ra.filename)
			info, err := w.store.Put(w.ctx, key, bytes.NewReader(ra.payload), blob.PutOptions{
				ContentType: ra.contentType,
				Metadata:    map[string]string{"run_id": run.ID, "export_id": task.id, "format": string(format)},
			})
			if err != nil {
				w.fail(task.id, fmt.Sprintf("store artifact %s: %v", key, err))
				return
			}
			url := info.URL
			if url == "" {
				if signed, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
					url = signed
				} else if !errors.Is(err, blob.ErrUnsupported) {
					w.fail(task.id, fmt.Sprintf("presign artifact %s: %v", key, err))
					return
				}
			}
			artifacts = append(artifacts, ExportArtifact{
				Key:         info.Key,
				Format:      format,
				ContentType: ra.contentType,
				SizeBytes:   info.Size,
				URL:         url,
				CreatedAt:   info.LastModified,
			})
		}
	}

	w.complete(task.id, artifacts)
}

func (w *Worker) updateStatus(id string, status ExportStatus, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
}

func (w *Worker) complete(id string, artifacts []ExportArtifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
}

type renderedArtifact struct {
	filename    string
	contentType string
	payload     []byte
}

func materialize(format ExportFormat, run domain.ScheduleRun) ([]renderedArtifact, error) {
	switch format {
	case FormatJSON:
		payload, err := json.Marshal(run)
		if err != nil {
			return nil, fmt.Errorf("marshal run: %w", err)
		}
		return []renderedArtifact{{filename: "run.json", contentType: "application/json", payload: payload}}, nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		if err := writeRunCSV(buf, run); err != nil {
			return nil, err
		}
		return []renderedArtifact{{filename: "schedule.csv", contentType: "text/csv", payload: buf.Bytes()}}, nil
	case FormatDailyCSV:
		out := make([]renderedArtifact, 0, len(run.Days))
		for _, day := range run.Days {
			buf := &bytes.Buffer{}
			if err := writeDayCSV(buf, day); err != nil {
				return nil, err
			}
			out = append(out, renderedArtifact{
				filename:    fmt.Sprintf("day_%02d_%s.csv", day.Day, day.Phase),
				contentType: "text/csv",
				payload:     buf.Bytes(),
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported export format %s", format)
	}
}

// writeRunCSV renders the full run as one table, prefixing each row with its
// day number and phase.
func writeRunCSV(w io.Writer, run domain.ScheduleRun) error {
	writer := csv.NewWriter(w)
	header := []string{"Day", "Phase"}
	if len(run.Days) > 0 {
		header = append(header, run.Days[0].Header...)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, day := range run.Days {
		for _, row := range day.Rows {
			record := append([]string{strconv.Itoa(day.Day), string(day.Phase)}, row.Strings()...)
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeDayCSV(w io.Writer, day domain.DayTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(day.Header); err != nil {
		return err
	}
	for _, row := range day.Rows {
		if err := writer.Write(row.Strings()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func newExportID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}
