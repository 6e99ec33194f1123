// Package service implements the access review decision lifecycle.
//
// Every successful mutation is paired with exactly one audit emission.
// Emission is best effort: it never changes the result returned to the caller.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	inventory "stackwise/internal/inventory/models"
	reviewmetrics "stackwise/internal/review/metrics"
	"stackwise/internal/review/models"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/audit/emitter"
	"stackwise/pkg/requestcontext"
)

const tracerName = "stackwise/internal/review"

// Store persists campaigns and decisions.
type Store interface {
	ListCampaigns(ctx context.Context, status models.CampaignStatus) ([]models.CampaignStats, error)
	GetCampaign(ctx context.Context, id domain.CampaignID) (*models.CampaignStats, error)
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	UpdateCampaignStatus(ctx context.Context, id domain.CampaignID, status models.CampaignStatus, at time.Time) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id domain.CampaignID) error
	ListDecisions(ctx context.Context, campaignID domain.CampaignID) ([]models.Decision, error)
	GetDecision(ctx context.Context, id domain.DecisionID) (*models.Decision, error)
	RecordDecision(ctx context.Context, id domain.DecisionID, state models.DecisionState, deciderID string, rationale *string, at time.Time) (*models.Decision, error)
	BulkInsertPending(ctx context.Context, campaignID domain.CampaignID, pairs []models.AccessPair, at time.Time) (int, error)
}

// AccessMatrix lists the current user to application grants.
type AccessMatrix interface {
	ListGrants(ctx context.Context) ([]inventory.Grant, error)
}

// AuditEmitter records audit events without reporting failure.
type AuditEmitter interface {
	Emit(ctx context.Context, actor audit.Actor, entry emitter.Entry)
	EmitExport(ctx context.Context, actor audit.Actor, objectType, format string, recordCount int, filters map[string]string)
}

// TxRunner runs fn inside a transaction carried on the context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates campaigns and decisions.
type Service struct {
	store   Store
	access  AccessMatrix
	audit   AuditEmitter
	tx      TxRunner
	logger  *slog.Logger
	metrics *reviewmetrics.Metrics
	tracer  trace.Tracer
	clock   func() time.Time
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *reviewmetrics.Metrics
	tracer  trace.Tracer
	tx      TxRunner
	clock   func() time.Time
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *reviewmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

// WithTxRunner sets the transaction boundary used when a campaign is
// created and scoped together. Defaults to running fn directly.
func WithTxRunner(tx TxRunner) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithClock overrides the request-scoped time.
func WithClock(now func() time.Time) Option {
	return func(c *serviceConfig) {
		c.clock = now
	}
}

// New constructs a Service. A nil auditor disables audit emission.
func New(store Store, access AccessMatrix, auditor AuditEmitter, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Service{
		store:   store,
		access:  access,
		audit:   auditor,
		tx:      cfg.tx,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
		clock:   cfg.clock,
	}
	if s.audit == nil {
		s.audit = nopEmitter{}
	}
	if s.tx == nil {
		s.tx = directTx{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

func (s *Service) now(ctx context.Context) time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return requestcontext.Now(ctx)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...trace.SpanStartOption) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "review."+name, attrs...)
}

// endSpan marks the span failed when err is non-nil, then ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordExport emits the audit event for a completed CSV export.
func (s *Service) RecordExport(ctx context.Context, actor audit.Actor, objectType string, recordCount int, filters map[string]string) {
	s.audit.EmitExport(ctx, actor, objectType, "csv", recordCount, filters)
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, audit.Actor, emitter.Entry) {}

func (nopEmitter) EmitExport(context.Context, audit.Actor, string, string, int, map[string]string) {}

// directTx is used when no database backs the stores.
type directTx struct{}

func (directTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
