// Package annotator provides the application-level service for term
// annotation.  It sits between the HTTP/CLI handlers and the annotation
// pipeline, owning request defaulting, batch-size enforcement, response
// caching, event publication, and metrics.
package annotator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/internal/config"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/cache/redis"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// Service defines the application operations exposed over HTTP and the CLI.
type Service interface {
	Annotate(ctx context.Context, input *AnnotateInput) (*annotation.Result, error)
	AnnotateBatch(ctx context.Context, input *BatchInput) ([]*annotation.Result, error)
	ExtractAnnotate(ctx context.Context, input *ExtractInput) ([]annotation.AnnotatedEntity, error)
	Domains() []DomainInfo
	Health(ctx context.Context) map[string]bool
}

// EventPublisher is the seam for annotation event publication.  Satisfied by
// *kafka.Producer; nil disables events.
type EventPublisher interface {
	PublishAsync(event kafka.AnnotationEvent)
}

// AnnotateInput carries a single-term annotation request.  UseFallback and
// MinConfidence are pointers so "absent" is distinguishable from the zero
// value; absent fields take the configured defaults.
type AnnotateInput struct {
	RequestID     string
	Text          string
	Domain        string
	Ontologies    []string
	UseFallback   *bool
	MinConfidence *float64
}

// BatchInput carries a multi-term annotation request sharing one option set.
type BatchInput struct {
	RequestID     string
	Texts         []string
	Domain        string
	Ontologies    []string
	UseFallback   *bool
	MinConfidence *float64
}

// ExtractInput carries a free-text extraction-and-annotation request.
type ExtractInput struct {
	RequestID     string
	Text          string
	Domains       []string
	UseFallback   *bool
	MinConfidence *float64
}

// DomainInfo pairs a domain label with its default ontology list.
type DomainInfo struct {
	Domain     string   `json:"domain"`
	Ontologies []string `json:"ontologies,omitempty"`
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	annotator *annotation.Annotator
	cache     redis.Cache
	events    EventPublisher
	metrics   *prometheus.AppMetrics
	cfg       config.AnnotationConfig
	cacheTTL  time.Duration
	logger    logging.Logger
}

// Option customizes the service beyond its required dependencies.
type Option func(*serviceImpl)

// WithCache enables response caching with the given TTL.  A zero TTL keeps
// the cache's own default.
func WithCache(c redis.Cache, ttl time.Duration) Option {
	return func(s *serviceImpl) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithEvents enables annotation event publication.
func WithEvents(p EventPublisher) Option {
	return func(s *serviceImpl) { s.events = p }
}

// WithMetrics enables metric recording.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// NewService creates the annotation application service.
func NewService(cfg config.AnnotationConfig, ann *annotation.Annotator, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		annotator: ann,
		cfg:       cfg,
		logger:    logger.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// buildOptions resolves request-level options against the configured
// defaults and validates the bounds the cache key depends on.
func (s *serviceImpl) buildOptions(domain string, ontologies []string, useFallback *bool, minConfidence *float64) (annotation.Options, error) {
	opts := annotation.Options{
		PreferredOntologies: ontologies,
		UseFallback:         s.cfg.UseFallback,
		MinConfidence:       s.cfg.MinConfidence,
	}
	if domain != "" {
		d, ok := annotation.ParseDomain(domain)
		if !ok {
			return annotation.Options{}, errors.UnknownDomain(domain)
		}
		opts.Domain = d
	}
	if useFallback != nil {
		opts.UseFallback = *useFallback
	}
	if minConfidence != nil {
		if *minConfidence < 0 || *minConfidence > 1 {
			return annotation.Options{}, errors.New(errors.ErrCodeAnnotationInvalidThreshold, "min_confidence must be in [0, 1]")
		}
		opts.MinConfidence = *minConfidence
	}
	return opts, nil
}

// cacheKey identifies one term under one option set.  Terms are normalized
// and case-folded so whitespace, Unicode-form, and case variants of the same
// query share an entry, matching the cascade's case-insensitive matching.
func cacheKey(text string, opts annotation.Options) string {
	return fmt.Sprintf("annotate:%s:%s:%t:%.4f:%s",
		opts.Domain,
		strings.Join(opts.PreferredOntologies, ","),
		opts.UseFallback,
		opts.MinConfidence,
		strings.ToLower(annotation.NormalizeQuery(text)),
	)
}

func (s *serviceImpl) Annotate(ctx context.Context, input *AnnotateInput) (*annotation.Result, error) {
	start := time.Now()
	opts, err := s.buildOptions(input.Domain, input.Ontologies, input.UseFallback, input.MinConfidence)
	if err != nil {
		s.recordAnnotation("annotate", input.Domain, nil, time.Since(start), err)
		return nil, err
	}

	res, cacheHit, err := s.annotateCached(ctx, input.Text, opts)
	duration := time.Since(start)

	s.recordAnnotation("annotate", string(opts.Domain), res, duration, err)
	if s.metrics != nil && s.cache != nil && err == nil {
		prometheus.RecordCacheAccess(s.metrics, "annotation", cacheHit)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(input.RequestID, res, opts, cacheHit, duration)
	return res, nil
}

// annotateCached runs the single-term pipeline through the response cache
// when one is wired.  Cache infrastructure failures degrade to a direct
// registry query; they never fail the request.
func (s *serviceImpl) annotateCached(ctx context.Context, text string, opts annotation.Options) (*annotation.Result, bool, error) {
	if s.cache == nil {
		res, err := s.annotator.Annotate(ctx, text, opts)
		return res, false, err
	}

	key := cacheKey(text, opts)
	loaded := false
	var loadErr error
	var res annotation.Result

	err := s.cache.GetOrSet(ctx, key, &res, s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		loaded = true
		r, aerr := s.annotator.Annotate(ctx, text, opts)
		if aerr != nil {
			loadErr = aerr
			return nil, aerr
		}
		return r, nil
	})
	if err != nil {
		if loadErr != nil {
			return nil, false, loadErr
		}
		s.logger.Warn("annotation cache unavailable, querying registries directly",
			logging.String("key", key),
			logging.Err(err),
		)
		r, aerr := s.annotator.Annotate(ctx, text, opts)
		return r, false, aerr
	}

	// The cached entry carries the first caller's raw text; the contract is
	// that InputText echoes this request's input.
	res.InputText = text
	return &res, !loaded, nil
}

func (s *serviceImpl) AnnotateBatch(ctx context.Context, input *BatchInput) ([]*annotation.Result, error) {
	start := time.Now()
	if s.cfg.MaxBatchSize > 0 && len(input.Texts) > s.cfg.MaxBatchSize {
		err := errors.New(errors.ErrCodeAnnotationBatchTooLarge, "annotation batch exceeds limit").
			WithDetail(fmt.Sprintf("size=%d limit=%d", len(input.Texts), s.cfg.MaxBatchSize))
		s.recordAnnotation("annotate_batch", input.Domain, nil, time.Since(start), err)
		return nil, err
	}
	opts, err := s.buildOptions(input.Domain, input.Ontologies, input.UseFallback, input.MinConfidence)
	if err != nil {
		s.recordAnnotation("annotate_batch", input.Domain, nil, time.Since(start), err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AnnotationBatchSize.WithLabelValues("annotate_batch").Observe(float64(len(input.Texts)))
		s.metrics.AnnotationInFlightBatches.WithLabelValues().Inc()
		defer s.metrics.AnnotationInFlightBatches.WithLabelValues().Dec()
	}

	results, err := s.annotator.AnnotateBatch(ctx, input.Texts, opts)
	duration := time.Since(start)

	if s.metrics != nil {
		var matchTypes []string
		for _, r := range results {
			matchTypes = append(matchTypes, resultMatchTypes(r)...)
		}
		prometheus.RecordAnnotation(s.metrics, "annotate_batch", metricDomain(string(opts.Domain)), matchTypes, duration, err)
		if err != nil {
			prometheus.RecordError(s.metrics, "annotation", string(errors.GetCode(err)))
		}
	}
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		s.publishEvent(input.RequestID, r, opts, false, duration)
	}
	return results, nil
}

func (s *serviceImpl) ExtractAnnotate(ctx context.Context, input *ExtractInput) ([]annotation.AnnotatedEntity, error) {
	start := time.Now()

	domains := make([]annotation.Domain, 0, len(input.Domains))
	for _, raw := range input.Domains {
		d, ok := annotation.ParseDomain(raw)
		if !ok {
			err := errors.UnknownDomain(raw)
			s.recordExtraction(nil, time.Since(start), err)
			return nil, err
		}
		domains = append(domains, d)
	}

	opts := annotation.ExtractOptions{
		Domains:       domains,
		UseFallback:   s.cfg.UseFallback,
		MinConfidence: s.cfg.MinConfidence,
	}
	if input.UseFallback != nil {
		opts.UseFallback = *input.UseFallback
	}
	if input.MinConfidence != nil {
		if *input.MinConfidence < 0 || *input.MinConfidence > 1 {
			err := errors.New(errors.ErrCodeAnnotationInvalidThreshold, "min_confidence must be in [0, 1]")
			s.recordExtraction(nil, time.Since(start), err)
			return nil, err
		}
		opts.MinConfidence = *input.MinConfidence
	}

	entities, err := s.annotator.AnnotateText(ctx, input.Text, opts)
	s.recordExtraction(entities, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *serviceImpl) Domains() []DomainInfo {
	valid := annotation.ValidDomains()
	out := make([]DomainInfo, 0, len(valid))
	for _, d := range valid {
		out = append(out, DomainInfo{
			Domain:     string(d),
			Ontologies: s.annotator.Resolver().OntologiesFor(d),
		})
	}
	return out
}

// Health reports per-component readiness.  The annotator itself is always
// ready once constructed; the cache is probed when wired.
func (s *serviceImpl) Health(ctx context.Context) map[string]bool {
	status := map[string]bool{"annotator": true}
	if s.cache != nil {
		status["cache"] = s.cache.Ping(ctx) == nil
	}
	if s.metrics != nil {
		for component, up := range status {
			v := 0.0
			if up {
				v = 1.0
			}
			s.metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
		}
	}
	return status
}

func (s *serviceImpl) publishEvent(requestID string, res *annotation.Result, opts annotation.Options, cacheHit bool, duration time.Duration) {
	if s.events == nil || res == nil {
		return
	}
	ev := kafka.AnnotationEvent{
		RequestID:  requestID,
		InputText:  res.InputText,
		Domain:     string(opts.Domain),
		MatchCount: len(res.Matches),
		CacheHit:   cacheHit,
		DurationMs: duration.Milliseconds(),
	}
	if len(res.Matches) > 0 {
		ev.TopTermID = res.Matches[0].TermID
		ev.TopMatchType = string(res.Matches[0].MatchType)
	}
	s.events.PublishAsync(ev)
}

func (s *serviceImpl) recordAnnotation(operation, domain string, res *annotation.Result, duration time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	prometheus.RecordAnnotation(s.metrics, operation, metricDomain(domain), resultMatchTypes(res), duration, err)
	if err != nil {
		prometheus.RecordError(s.metrics, "annotation", string(errors.GetCode(err)))
	}
}

func (s *serviceImpl) recordExtraction(entities []annotation.AnnotatedEntity, duration time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	entityDomains := make([]string, 0, len(entities))
	for _, e := range entities {
		entityDomains = append(entityDomains, string(e.Domain))
	}
	prometheus.RecordExtraction(s.metrics, entityDomains, duration, err)
	if err != nil {
		prometheus.RecordError(s.metrics, "extraction", string(errors.GetCode(err)))
	}
}

func resultMatchTypes(res *annotation.Result) []string {
	if res == nil {
		return nil
	}
	out := make([]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		out = append(out, string(m.MatchType))
	}
	return out
}

// metricDomain keeps the label space closed: only valid domain labels and
// "none" are emitted, never raw request input.
func metricDomain(domain string) string {
	if _, ok := annotation.ParseDomain(domain); ok {
		return domain
	}
	return ""
}
