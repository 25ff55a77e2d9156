// Package planfile stores generated plans as editable YAML documents so a plan
// can be reviewed between generation and commit.
package planfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
)

// Version is the current plan file format version.
const Version = 1

// ErrInvalidPlanFile is returned for documents that parse but cannot be committed.
var ErrInvalidPlanFile = errors.New("invalid plan file")

// Document is the on-disk shape of a plan.
type Document struct {
	Version      int                `yaml:"version"`
	ProjectName  string             `yaml:"project_name"`
	DurationDays int                `yaml:"duration_days"`
	Model        string             `yaml:"model,omitempty"`
	GeneratedAt  time.Time          `yaml:"generated_at"`
	Drafts       []domain.TaskDraft `yaml:"tasks"`
	Anomalies    []string           `yaml:"anomalies,omitempty"`
}

// FromPlan wraps a generated plan in a Document.
func FromPlan(p *planning.Plan, generatedAt time.Time) *Document {
	doc := &Document{
		Version:      Version,
		ProjectName:  p.ProjectName,
		DurationDays: p.DurationDays,
		Model:        p.Model,
		GeneratedAt:  generatedAt.UTC().Truncate(time.Second),
		Drafts:       p.Drafts,
	}
	for _, a := range p.Anomalies {
		doc.Anomalies = append(doc.Anomalies, a.String())
	}
	return doc
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding plan file: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML plan and validates it. Draft fields are repaired the
// same way model output is: bad priorities become normal, offsets are bounded
// to [1, domain.MaxDayOffset] and a blank description gets the placeholder. A
// draft without a title is an error, since a human wrote it.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPlanFile)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlanFile, err)
	}

	if doc.Version != 0 && doc.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidPlanFile, doc.Version)
	}
	for i := range doc.Drafts {
		d := &doc.Drafts[i]
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			return nil, fmt.Errorf("%w: task %d has no title", ErrInvalidPlanFile, i+1)
		}
		if !domain.ValidPriorities[string(d.Priority)] {
			d.Priority = domain.PriorityNormal
		}
		d.DaysFromNow = domain.ClampDayOffset(d.DaysFromNow)
		d.Description = planning.DraftDescription(*d)
	}
	return &doc, nil
}

// Write saves doc to path, creating parent directories.
func Write(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating plan directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}

// Read loads and validates the plan at path.
func Read(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
