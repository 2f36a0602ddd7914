package runlog

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"clinex/pkg/core"
)

// RunLog is the durable trace of one extraction run: what ran, over which
// notes, and what came back, including error-flagged records.
type RunLog struct {
	Version    int             `json:"version"`
	RunID      string          `json:"run_id"`
	Status     string          `json:"status"`
	SchemaName string          `json:"schema_name"`
	ModelName  string          `json:"model_name"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Metrics    core.RunMetrics `json:"metrics"`
	Failures   []Failure       `json:"failures,omitempty"`
}

// Failure is one note the run could not extract.
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// FromReport builds the log header for a finished run.
func FromReport(report core.RunReport) RunLog {
	log := RunLog{
		Version:    1,
		RunID:      uuid.NewString(),
		Status:     "success",
		SchemaName: report.SchemaName,
		ModelName:  report.ModelName,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Metrics:    report.Metrics,
	}
	for _, result := range report.Results {
		if result.Record.Failed() {
			log.Failures = append(log.Failures, Failure{ID: result.Record.ID, Error: result.Record.Error})
		}
	}
	if len(log.Failures) > 0 {
		log.Status = "partial"
	}
	if report.Metrics.TotalNotes > 0 && report.Metrics.Extracted == 0 {
		log.Status = "error"
	}
	return log
}

// Write stores the run as a zip archive in dir: header.json, summary.json,
// and one records/<id>.json per note. Returns the archive path.
func Write(dir string, log RunLog, report core.RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s.zip", log.StartedAt.UTC().Format("2006-01-02T15-04-05"), log.RunID)
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	if err := writeEntry(archive, "header.json", log); err != nil {
		archive.Close()
		return "", err
	}
	for i, result := range report.Results {
		entry := fmt.Sprintf("records/%03d_%s.json", i+1, sanitize(result.Record.ID))
		if err := writeEntry(archive, entry, result); err != nil {
			archive.Close()
			return "", err
		}
	}
	if err := writeEntry(archive, "summary.json", report.Metrics); err != nil {
		archive.Close()
		return "", err
	}
	if err := archive.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func writeEntry(archive *zip.Writer, name string, payload any) error {
	w, err := archive.Create(name)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func sanitize(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "record"
	}
	return string(out)
}
