// Package export appends accepted leads to analyst-friendly CSV files, one
// file per calendar month. The CSV is a best-effort downstream copy of the
// lead store and carries no ownership of the data.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lifecarechoice/leadgate/internal/models"
)

var csvHeader = []string{
	"id", "timestamp", "first_name", "last_name", "email", "phone",
	"zip", "state", "product_interest", "best_time", "message",
	"gender", "birth_date", "tobacco", "coverage",
	"agent_license", "experience",
	"ip_address", "user_agent", "referrer", "landing_url",
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"gclid", "fbclid", "click_id",
}

// CSVExporter appends leads to submissions-YYYY-MM.csv in the configured
// directory, creating the file with a header row when the month rolls over.
type CSVExporter struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewCSVExporter(dir string) (*CSVExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create csv directory: %w", err)
	}
	return &CSVExporter{dir: dir, now: time.Now}, nil
}

// CurrentPath returns the file for the current calendar month.
func (e *CSVExporter) CurrentPath() string {
	now := e.now()
	filename := fmt.Sprintf("submissions-%04d-%02d.csv", now.Year(), now.Month())
	return filepath.Join(e.dir, filename)
}

// Append writes one lead row, quoting fields containing commas, quotes, or
// newlines per standard CSV rules. Appends from concurrent submissions are
// serialized so rows never interleave.
func (e *CSVExporter) Append(lead *models.Lead) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path := e.CurrentPath()
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("unable to write csv header: %w", err)
		}
	}

	row := []string{
		lead.ID,
		lead.CreatedAt.UTC().Format(time.RFC3339),
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Zip,
		lead.State,
		lead.ProductInterest,
		lead.BestTime,
		lead.Message,
		lead.Gender,
		lead.BirthDate,
		lead.Tobacco,
		lead.Coverage,
		lead.AgentLicense,
		lead.Experience,
		lead.IPAddress,
		lead.UserAgent,
		lead.Referrer,
		lead.LandingURL,
		lead.UTMSource,
		lead.UTMMedium,
		lead.UTMCampaign,
		lead.UTMTerm,
		lead.UTMContent,
		lead.GCLID,
		lead.FBCLID,
		lead.ClickID,
	}

	if err := w.Write(row); err != nil {
		return fmt.Errorf("unable to write csv row: %w", err)
	}

	w.Flush()
	return w.Error()
}

// ListFiles returns the export files present in the directory, most recent
// month first.
func (e *CSVExporter) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read csv directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "submissions-") && strings.HasSuffix(name, ".csv") {
			files = append(files, name)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}
