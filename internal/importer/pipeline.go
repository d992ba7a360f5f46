package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/checktrack/checktrack/internal/clock"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/model"
)

// Pipeline turns decoded spreadsheet rows into payment records.
type Pipeline struct {
	clock    clock.Clock
	ids      id.Generator
	dates    DateParser
	logger   *log.Logger
	registry *Registry
}

// Preview is the result of processing one file, before anything is stored.
type Preview struct {
	Source   string          `json:"source,omitempty"`
	Payments []model.Payment `json:"payments"`
	Summary  Summary         `json:"summary"`
	// Rows is the number of data rows below the header.
	Rows int `json:"rows"`
	// Dropped is the number of data rows that failed coercion.
	Dropped int `json:"dropped"`
}

// NewPipeline creates a pipeline with the default registry and date chain.
// A nil logger discards output.
func NewPipeline(clk clock.Clock, ids id.Generator, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		clock:    clk,
		ids:      ids,
		logger:   logger,
		registry: DefaultRegistry(),
	}
}

// SetDateParser replaces the date chain.
func (p *Pipeline) SetDateParser(dp DateParser) { p.dates = dp }

// SetRegistry replaces the decoder registry.
func (p *Pipeline) SetRegistry(r *Registry) { p.registry = r }

// Registry returns the decoder registry in use.
func (p *Pipeline) Registry() *Registry { return p.registry }

// Process validates rows and returns the accepted records in input order.
// Only structural problems produce an error; bad rows are dropped.
func (p *Pipeline) Process(rows [][]Cell) ([]model.Payment, error) {
	pv, err := p.Preview(rows)
	if err != nil {
		return nil, err
	}
	return pv.Payments, nil
}

// Preview is Process plus the summary and row counts.
func (p *Pipeline) Preview(rows [][]Cell) (*Preview, error) {
	if err := ValidateShape(rows); err != nil {
		return nil, err
	}

	now := p.clock.Now()
	today := clock.StartOfDay(now)
	dates := p.dates
	if dates == nil {
		dates = DefaultDateParser(now.Location())
	}

	withStatus := hasStatusColumn(rows[0])
	data := rows[1:]
	payments := make([]model.Payment, 0, len(data))
	for i, row := range data {
		pay, reason := coerceRow(row, dates, now, today, withStatus)
		if reason != "" {
			// Row 1 is the header.
			p.logger.Debug("dropping row", "row", i+2, "reason", reason)
			continue
		}
		pay.ID = p.ids.NewID()
		payments = append(payments, pay)
	}

	return &Preview{
		Payments: payments,
		Summary:  Summarize(payments),
		Rows:     len(data),
		Dropped:  len(data) - len(payments),
	}, nil
}

// PreviewReader decodes r with the decoder registered for name's extension.
func (p *Pipeline) PreviewReader(name string, r io.Reader) (*Preview, error) {
	dec, err := p.registry.ForFile(name)
	if err != nil {
		return nil, err
	}
	rows, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreadableFile, filepath.Base(name), err)
	}

	pv, err := p.Preview(rows)
	if err != nil {
		return nil, err
	}
	pv.Source = filepath.Base(name)
	p.logger.Info("import preview", "file", pv.Source, "format", dec.Format(),
		"rows", pv.Rows, "accepted", pv.Summary.Count, "dropped", pv.Dropped)
	return pv, nil
}

// PreviewFile opens path and previews it.
func (p *Pipeline) PreviewFile(path string) (*Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.PreviewReader(path, f)
}
