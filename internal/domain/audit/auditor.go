package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"manage-breast-screening/internal/platform/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrAnonymousAudit       = errors.New("attempted to audit an operation with no logged in user and no system update id")
	ErrAmbiguousAuditSource = errors.New("audit source must be either a user or a system update id, not both")
	ErrAuditAfterDelete     = errors.New("error auditing deletion of an object that is no longer stored; audit prior to deletion instead")
	ErrImmutableAuditLog    = errors.New("audit logs cannot be modified")
	ErrInvalidInput         = errors.New("invalid input")
)

// DefaultExcludedFields are never copied into snapshots.
var DefaultExcludedFields = []string{"id", "created_at", "updated_at"}

var tracer = otel.Tracer("manage-breast-screening/internal/domain/audit")

// Source identifies who performs an audited operation.
type Source struct {
	ActorID        string
	SystemUpdateID string
}

type settings struct {
	locator  Locator
	excluded []string
	now      func() time.Time
	metrics  *metrics.Metrics
}

type Option func(*settings)

// WithLocator enables the "row must still exist" check on deletes.
func WithLocator(l Locator) Option {
	return func(s *settings) { s.locator = l }
}

func WithExcludedFields(fields ...string) Option {
	return func(s *settings) { s.excluded = fields }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// Auditor writes audit logs on behalf of one user or one system update.
type Auditor struct {
	repo           Repository
	locator        Locator
	excluded       map[string]struct{}
	now            func() time.Time
	metrics        *metrics.Metrics
	actorID        *string
	systemUpdateID *string
}

func New(repo Repository, src Source, opts ...Option) (*Auditor, error) {
	if repo == nil {
		return nil, fmt.Errorf("%w: audit repository required", ErrInvalidInput)
	}

	actor := strings.TrimSpace(src.ActorID)
	system := strings.TrimSpace(src.SystemUpdateID)
	switch {
	case actor == "" && system == "":
		return nil, ErrAnonymousAudit
	case actor != "" && system != "":
		return nil, ErrAmbiguousAuditSource
	}

	s := settings{excluded: DefaultExcludedFields, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}

	a := &Auditor{
		repo:     repo,
		locator:  s.locator,
		excluded: make(map[string]struct{}, len(s.excluded)),
		now:      s.now,
		metrics:  s.metrics,
	}
	for _, f := range s.excluded {
		a.excluded[f] = struct{}{}
	}
	if actor != "" {
		a.actorID = &actor
	} else {
		a.systemUpdateID = &system
	}
	return a, nil
}

func (a *Auditor) Create(ctx context.Context, e Auditable) (Log, error) {
	return a.one(ctx, OperationCreate, e)
}

func (a *Auditor) Update(ctx context.Context, e Auditable) (Log, error) {
	return a.one(ctx, OperationUpdate, e)
}

// Delete must be called before the row is removed.
func (a *Auditor) Delete(ctx context.Context, e Auditable) (Log, error) {
	return a.one(ctx, OperationDelete, e)
}

func (a *Auditor) BulkCreate(ctx context.Context, items []Auditable) ([]Log, error) {
	return a.record(ctx, OperationCreate, items)
}

func (a *Auditor) BulkUpdate(ctx context.Context, items []Auditable) ([]Log, error) {
	return a.record(ctx, OperationUpdate, items)
}

func (a *Auditor) BulkDelete(ctx context.Context, items []Auditable) ([]Log, error) {
	return a.record(ctx, OperationDelete, items)
}

func (a *Auditor) one(ctx context.Context, op Operation, e Auditable) (Log, error) {
	logs, err := a.record(ctx, op, []Auditable{e})
	if err != nil {
		return Log{}, err
	}
	return logs[0], nil
}

func (a *Auditor) record(ctx context.Context, op Operation, items []Auditable) ([]Log, error) {
	ctx, span := tracer.Start(ctx, "audit.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("audit.operation", string(op)),
		attribute.Int("audit.count", len(items)),
	)

	if len(items) == 0 {
		return []Log{}, nil
	}

	now := a.now().UTC()
	logs := make([]Log, 0, len(items))
	for _, e := range items {
		if e == nil {
			return nil, fmt.Errorf("%w: nil entity", ErrInvalidInput)
		}

		if op == OperationDelete {
			if err := a.checkStillStored(ctx, e); err != nil {
				span.RecordError(err)
				return nil, err
			}
		} else if e.AuditObjectID() == uuid.Nil {
			return nil, fmt.Errorf("%w: %s has no id", ErrInvalidInput, e.AuditContentType())
		}

		snapshot := map[string]any{}
		if op != OperationDelete {
			var err error
			if snapshot, err = a.snapshot(e); err != nil {
				return nil, err
			}
		}

		logs = append(logs, Log{
			ID:             uuid.New(),
			ContentType:    e.AuditContentType(),
			ObjectID:       e.AuditObjectID(),
			Operation:      op,
			Snapshot:       snapshot,
			ActorID:        a.actorID,
			SystemUpdateID: a.systemUpdateID,
			CreatedAt:      now,
		})
	}

	if err := a.repo.Insert(ctx, logs); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert audit logs: %w", err)
	}

	for _, l := range logs {
		a.metrics.ObserveAuditLogs(l.ContentType, string(op), 1)
	}
	return logs, nil
}

func (a *Auditor) checkStillStored(ctx context.Context, e Auditable) error {
	if e.AuditObjectID() == uuid.Nil {
		return ErrAuditAfterDelete
	}
	if a.locator == nil {
		return nil
	}
	ok, err := a.locator.Exists(ctx, e.AuditContentType(), e.AuditObjectID())
	if err != nil {
		return fmt.Errorf("locate %s %s: %w", e.AuditContentType(), e.AuditObjectID(), err)
	}
	if !ok {
		return ErrAuditAfterDelete
	}
	return nil
}

// snapshot drops excluded fields and normalises values through JSON so the
// stored map is exactly what a later read returns.
func (a *Auditor) snapshot(e Auditable) (map[string]any, error) {
	fields := make(map[string]any)
	for k, v := range e.AuditFields() {
		if _, skip := a.excluded[k]; skip {
			continue
		}
		fields[k] = v
	}

	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", e.AuditContentType(), err)
	}
	return DecodeSnapshot(b)
}

// DecodeSnapshot parses a stored snapshot. Numbers stay json.Number so that
// integers are not widened to float64.
func DecodeSnapshot(b []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(b) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Factory builds Auditors that share a store and options.
type Factory struct {
	repo Repository
	opts []Option
}

func NewFactory(repo Repository, opts ...Option) *Factory {
	return &Factory{repo: repo, opts: opts}
}

func (f *Factory) For(src Source) (*Auditor, error) {
	return New(f.repo, src, f.opts...)
}

// ForActor audits on behalf of an authenticated user.
func (f *Factory) ForActor(userID string) (*Auditor, error) {
	return New(f.repo, Source{ActorID: userID}, f.opts...)
}

// ForSystemUpdate audits imports and scripted changes.
func (f *Factory) ForSystemUpdate(id string) (*Auditor, error) {
	return New(f.repo, Source{SystemUpdateID: id}, f.opts...)
}
