// Package reconcile runs one reconciliation flow: analyze the target, recommend and finalize a
// mapping table, then merge, preview or export.
package reconcile

import (
	"context"
	"io"
	"time"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/attribute"

	appctx "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/dateformat"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/formula"
	"github.com/Ramsey-B/fern/pkg/inference"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/merge"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/similarity"
	"github.com/Ramsey-B/fern/pkg/tabular"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// EventPublisher receives merge outcomes. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishMergeEvent(ctx context.Context, event *kafka.MergeEvent) error
}

type Options struct {
	DateSampleSize          int
	PreviewRowLimit         int
	DefaultOutputDateFormat string
}

func DefaultOptions() Options {
	return Options{
		DateSampleSize:          inference.DefaultSampleSize,
		PreviewRowLimit:         10,
		DefaultOutputDateFormat: dateformat.Default,
	}
}

type Service struct {
	recommender *similarity.Recommender
	engine      *merge.Engine
	evaluator   *formula.Evaluator
	publisher   EventPublisher
	logger      ectologger.Logger
	opts        Options
}

// NewService wires the reconciliation flow. publisher may be nil when events are disabled.
func NewService(recommender *similarity.Recommender, evaluator *formula.Evaluator, publisher EventPublisher, logger ectologger.Logger, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.DateSampleSize <= 0 {
		opts.DateSampleSize = defaults.DateSampleSize
	}
	if opts.PreviewRowLimit <= 0 {
		opts.PreviewRowLimit = defaults.PreviewRowLimit
	}
	if opts.DefaultOutputDateFormat == "" {
		opts.DefaultOutputDateFormat = defaults.DefaultOutputDateFormat
	}
	if evaluator == nil {
		evaluator = formula.NewEvaluator()
	}

	return &Service{
		recommender: recommender,
		engine:      merge.NewEngine(evaluator),
		evaluator:   evaluator,
		publisher:   publisher,
		logger:      logger,
		opts:        opts,
	}
}

// Analysis is what the service learns about a dataset from sampling it.
type Analysis struct {
	Fields      []string                    `json:"fields"`
	Types       map[string]models.FieldType `json:"types"`
	DateFields  []string                    `json:"date_fields"`
	DateFormats map[string]string           `json:"date_formats"`
}

func (s *Service) Analyze(ctx context.Context, dataset models.Dataset) Analysis {
	_, span := tracing.StartSpan(ctx, "reconcile.Service.Analyze",
		attribute.Int("dataset.fields", len(dataset.Fields)),
		attribute.Int("dataset.rows", len(dataset.Rows)),
	)
	defer span.End()

	types, dateFields := inference.Infer(dataset.Rows, dataset.Fields, s.opts.DateSampleSize)
	return Analysis{
		Fields:      dataset.Fields,
		Types:       types,
		DateFields:  dateFields,
		DateFormats: inference.DetectDateFormats(dataset.Rows, dateFields, s.opts.DateSampleSize),
	}
}

func (s *Service) Recommend(ctx context.Context, targets, sources []string) (recs map[string]models.Recommendation, err error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Service.Recommend",
		attribute.Int("recommend.targets", len(targets)),
		attribute.Int("recommend.sources", len(sources)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"target_fields": len(targets),
		"source_fields": len(sources),
	})

	start := time.Now()
	recs, err = s.recommender.Recommend(ctx, targets, sources)
	if err != nil {
		metrics.RecordRecommendation("error", time.Since(start).Seconds())
		log.WithError(err).Error("Failed to recommend mappings")
		return nil, err
	}

	metrics.RecordRecommendation("success", time.Since(start).Seconds())
	log.Infof("Recommended mappings for %d target fields", len(recs))
	return recs, nil
}

// AutoMapResult is a proposed mapping table with the recommendations behind it.
type AutoMapResult struct {
	Mappings        models.FieldMappings             `json:"mappings"`
	Recommendations map[string]models.Recommendation `json:"recommendations"`
	Missing         []string                         `json:"missing"`
	Target          Analysis                         `json:"target"`
}

// AutoMap recommends a source for every target field and turns the result into a mapping table.
// Date-typed targets take the date format detected on their source column.
func (s *Service) AutoMap(ctx context.Context, target, source models.Dataset, minScore float64) (*AutoMapResult, error) {
	analysis := s.Analyze(ctx, target)

	recs, err := s.Recommend(ctx, target.Fields, source.Fields)
	if err != nil {
		return nil, err
	}

	sourceDates := inference.DetectDateFields(source.Rows, source.Fields, s.opts.DateSampleSize)
	mappings := similarity.AutoMap(target.Fields, recs, analysis.Types, similarity.AutoMapOptions{
		MinScore:          minScore,
		SourceDateFormats: inference.DetectDateFormats(source.Rows, sourceDates, s.opts.DateSampleSize),
		DefaultDateFormat: dateformat.Default,
	})

	return &AutoMapResult{
		Mappings:        mappings,
		Recommendations: recs,
		Missing:         mappings.Missing(target.Fields),
		Target:          analysis,
	}, nil
}

// Merge infers types from the target rows for fields the caller sent no type for, merges every
// row and publishes the outcome.
func (s *Service) Merge(ctx context.Context, req merge.Request) ([]models.MergedRow, error) {
	req.Limit = 0
	return s.run(ctx, req, true)
}

// Preview merges at most PreviewRowLimit rows. Previews are not published.
func (s *Service) Preview(ctx context.Context, req merge.Request) ([]models.MergedRow, error) {
	req.Limit = s.opts.PreviewRowLimit
	return s.run(ctx, req, false)
}

func (s *Service) run(ctx context.Context, req merge.Request, publish bool) ([]models.MergedRow, error) {
	types, _ := inference.Infer(req.TargetRows, req.TargetFields, s.opts.DateSampleSize)
	for field, fieldType := range req.Types {
		types[field] = fieldType
	}
	req.Types = types
	if req.OutputDateFormat == "" {
		req.OutputDateFormat = s.opts.DefaultOutputDateFormat
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"target_fields": len(req.TargetFields),
		"target_rows":   len(req.TargetRows),
		"source_rows":   len(req.SourceRows),
		"preview":       !publish,
	})

	start := time.Now()
	rows, err := s.engine.Merge(ctx, req)
	duration := time.Since(start)

	if err != nil {
		kind := "Unknown"
		if mergeErr, ok := apperrors.AsMergeError(err); ok {
			kind = string(mergeErr.Kind)
		}
		metrics.RecordMerge("error", kind, 0, duration.Seconds())
		log.WithError(err).WithField("kind", kind).Warn("Merge rejected")
	} else {
		metrics.RecordMerge("success", "", len(rows), duration.Seconds())
		log.Infof("Merged %d rows in %s", len(rows), duration)
	}

	if publish {
		s.publish(ctx, req, len(rows), duration, err)
	}

	if err != nil {
		return nil, err
	}
	return rows, nil
}

// publish never fails the merge; a lost event is logged.
func (s *Service) publish(ctx context.Context, req merge.Request, mergedRows int, duration time.Duration, mergeErr error) {
	if s.publisher == nil {
		return
	}

	event := kafka.NewMergeEvent(req.TargetFields, len(req.SourceRows), mergedRows, duration, mergeErr)
	event.RequestID = appctx.GetRequestID(ctx)
	event.TraceID = tracing.GetTraceID(ctx)
	event.SpanID = tracing.GetSpanID(ctx)

	if err := s.publisher.PublishMergeEvent(ctx, event); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warnf("Failed to publish %s event", event.Type)
	}
}

// FormulaResult is a dry run of a custom formula.
type FormulaResult struct {
	Result string   `json:"result"`
	Fields []string `json:"fields"`
}

// EvaluateFormula dry-runs a custom formula against one row and reports the fields it reads.
func (s *Service) EvaluateFormula(ctx context.Context, expression string, row models.Row) (FormulaResult, error) {
	_, span := tracing.StartSpan(ctx, "reconcile.Service.EvaluateFormula")
	defer span.End()

	fields, err := s.evaluator.Validate(expression)
	if err != nil {
		metrics.RecordFormulaEvaluation("error")
		return FormulaResult{}, apperrors.WrapMergeError(apperrors.KindCustomFormulaError, err)
	}

	result, err := s.evaluator.EvaluateRow(expression, row)
	if err != nil {
		metrics.RecordFormulaEvaluation("error")
		return FormulaResult{}, apperrors.WrapMergeError(apperrors.KindCustomFormulaError, err).AddField(firstMissing(fields, row))
	}

	metrics.RecordFormulaEvaluation("success")
	return FormulaResult{Result: result, Fields: fields}, nil
}

// firstMissing returns the first referenced field the row has no value for.
func firstMissing(fields []string, row models.Row) string {
	for _, field := range fields {
		if _, ok := row.Value(field); !ok {
			return field
		}
	}
	return ""
}

// Export writes merged rows in target field order.
func (s *Service) Export(w io.Writer, format tabular.Format, fields []string, rows []models.MergedRow) error {
	if format == tabular.FormatJSON {
		return tabular.WriteJSON(w, fields, rows)
	}
	return tabular.WriteCSV(w, fields, rows)
}
