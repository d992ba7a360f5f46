// Package payments implements the permission-checked operations on payments.
package payments

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/checktrack/checktrack/internal/activity"
	"github.com/checktrack/checktrack/internal/clock"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/store"
)

var (
	// ErrForbidden is matched by every permission failure.
	ErrForbidden = model.ErrForbidden
	// ErrPasswordMismatch signals a wrong password on clear-all.
	ErrPasswordMismatch = errors.New("password does not match")
	// ErrEmptyImport signals a preview with no accepted rows.
	ErrEmptyImport = errors.New("nothing to import")
)

// PasswordVerifier checks a password re-entry.
type PasswordVerifier interface {
	VerifyPassword(username, password string) error
}

// Service wraps a store with permission checks and the activity log.
type Service struct {
	store     store.Store
	passwords PasswordVerifier
	activity  activity.Recorder
	ids       id.Generator
	clock     clock.Clock
	logger    *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithActivity records mutations to rec.
func WithActivity(rec activity.Recorder) Option { return func(s *Service) { s.activity = rec } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Service) { s.logger = l } }

// WithIDs sets the ID generator used for new payments.
func WithIDs(g id.Generator) Option { return func(s *Service) { s.ids = g } }

// WithClock sets the clock used for "today".
func WithClock(c clock.Clock) Option { return func(s *Service) { s.clock = c } }

// NewService creates a Service.
func NewService(st store.Store, passwords PasswordVerifier, opts ...Option) *Service {
	s := &Service{
		store:     st,
		passwords: passwords,
		activity:  activity.Discard{},
		ids:       id.UUID{},
		clock:     clock.System{},
		logger:    log.New(io.Discard),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns the payments matching f, earliest due date first.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Payment, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	out := make([]model.Payment, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Summary totals the payments matching f.
func (s *Service) Summary(ctx context.Context, f Filter) (importer.Summary, error) {
	list, err := s.List(ctx, f)
	if err != nil {
		return importer.Summary{}, err
	}
	return importer.Summarize(list), nil
}

// Overdue returns pending payments whose due date is before today.
func (s *Service) Overdue(ctx context.Context) ([]model.Payment, error) {
	list, err := s.List(ctx, Filter{Status: model.StatusPending})
	if err != nil {
		return nil, err
	}
	today := clock.StartOfDay(s.clock.Now())
	var out []model.Payment
	for _, p := range list {
		if p.IsOverdue(today) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns a payment by exact ID.
func (s *Service) Get(ctx context.Context, paymentID string) (model.Payment, error) {
	return s.store.Get(ctx, paymentID)
}

// Resolve finds a payment by ID or unique ID prefix.
func (s *Service) Resolve(ctx context.Context, ref string) (model.Payment, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return model.Payment{}, fmt.Errorf("listing payments: %w", err)
	}
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	full, err := id.Resolve(ref, ids)
	if err != nil {
		return model.Payment{}, fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	for _, p := range all {
		if p.ID == full {
			return p, nil
		}
	}
	return model.Payment{}, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
}

// Add creates a pending payment. Requires add.
func (s *Service) Add(ctx context.Context, actor model.User, d Draft) (model.Payment, error) {
	if err := model.Require(actor, model.PermAdd); err != nil {
		return model.Payment{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Payment{}, err
	}

	p := d.apply(model.Payment{ID: s.ids.NewID(), Status: model.StatusPending})
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return model.Payment{}, fmt.Errorf("adding payment: %w", err)
	}
	s.record(actor, activity.ActionAdd, fmt.Sprintf("added %s (%s)", created.CheckNumber, created.Amount.StringFixed(2)), created.ID)
	return created, nil
}

// Edit replaces the editable fields of a payment; the status is kept.
// Requires edit.
func (s *Service) Edit(ctx context.Context, actor model.User, paymentID string, d Draft) (model.Payment, error) {
	if err := model.Require(actor, model.PermEdit); err != nil {
		return model.Payment{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Payment{}, err
	}

	cur, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return model.Payment{}, err
	}
	updated, err := s.store.Update(ctx, d.apply(cur))
	if err != nil {
		return model.Payment{}, fmt.Errorf("editing payment: %w", err)
	}
	s.record(actor, activity.ActionEdit, "edited "+updated.CheckNumber, updated.ID)
	return updated, nil
}

// ChangeStatus sets a payment's status. Requires changeStatus.
func (s *Service) ChangeStatus(ctx context.Context, actor model.User, paymentID string, status model.Status) (model.Payment, error) {
	if err := model.Require(actor, model.PermChangeStatus); err != nil {
		return model.Payment{}, err
	}
	if _, err := model.ParseStatus(string(status)); err != nil {
		return model.Payment{}, err
	}

	cur, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return model.Payment{}, err
	}
	from := cur.Status
	cur.Status = status
	updated, err := s.store.Update(ctx, cur)
	if err != nil {
		return model.Payment{}, fmt.Errorf("changing status: %w", err)
	}
	s.record(actor, activity.ActionStatus, fmt.Sprintf("%s: %s -> %s", updated.CheckNumber, from, status), updated.ID)
	return updated, nil
}

// Delete removes one payment. Requires delete.
func (s *Service) Delete(ctx context.Context, actor model.User, paymentID string) error {
	if err := model.Require(actor, model.PermDelete); err != nil {
		return err
	}
	cur, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, paymentID); err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}
	s.record(actor, activity.ActionDelete, "deleted "+cur.CheckNumber, cur.ID)
	return nil
}

// Clear removes every payment after the actor re-enters their password.
// Requires delete.
func (s *Service) Clear(ctx context.Context, actor model.User, password string) (int, error) {
	if err := model.Require(actor, model.PermDelete); err != nil {
		return 0, err
	}
	if err := s.passwords.VerifyPassword(actor.Username, password); err != nil {
		return 0, ErrPasswordMismatch
	}
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing payments: %w", err)
	}
	s.record(actor, activity.ActionClear, fmt.Sprintf("deleted all %d payments", n))
	s.logger.Warn("all payments cleared", "user", actor.Username, "count", n)
	return n, nil
}

// CommitImport stores the accepted records of a preview in one batch.
// Requires add.
func (s *Service) CommitImport(ctx context.Context, actor model.User, pv *importer.Preview) ([]model.Payment, error) {
	if err := model.Require(actor, model.PermAdd); err != nil {
		return nil, err
	}
	if pv == nil || len(pv.Payments) == 0 {
		return nil, ErrEmptyImport
	}

	created, err := s.store.CreateBatch(ctx, pv.Payments)
	if err != nil {
		return nil, fmt.Errorf("saving imported payments: %w", err)
	}

	ids := make([]string, len(created))
	for i, p := range created {
		ids[i] = p.ID
	}
	details := fmt.Sprintf("imported %d payments totalling %s", pv.Summary.Count, pv.Summary.TotalAmount.StringFixed(2))
	if pv.Source != "" {
		details += " from " + pv.Source
	}
	s.record(actor, activity.ActionImport, details, ids...)
	s.logger.Info("import committed", "user", actor.Username, "source", pv.Source, "count", len(created))
	return created, nil
}

// Restore replaces all payments with the given records. Records without an
// ID get a new one; an invalid status becomes pending. Requires add.
func (s *Service) Restore(ctx context.Context, actor model.User, records []model.Payment) (int, error) {
	if err := model.Require(actor, model.PermAdd); err != nil {
		return 0, err
	}

	batch := make([]model.Payment, len(records))
	for i, p := range records {
		if p.ID == "" {
			p.ID = s.ids.NewID()
		}
		if _, err := model.ParseStatus(string(p.Status)); err != nil {
			p.Status = model.StatusPending
		}
		batch[i] = p
	}
	if err := store.CheckBatch(batch, func(string) bool { return false }); err != nil {
		return 0, fmt.Errorf("restoring backup: %w", err)
	}

	removed, err := s.store.Replace(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("restoring backup: %w", err)
	}
	s.record(actor, activity.ActionRestore, fmt.Sprintf("replaced %d payments with %d from backup", removed, len(batch)))
	return len(batch), nil
}

func (s *Service) record(actor model.User, action, details string, ids ...string) {
	if err := s.activity.Record(actor.Username, action, details, ids...); err != nil {
		s.logger.Error("recording activity", "action", action, "err", err)
	}
}
