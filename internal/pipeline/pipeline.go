// Package pipeline orchestrates a search request end to end: keyphrase
// extraction, query construction, the provider call, ranking against the
// original description, and enrichment of the top results.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilcherian/jobscout/internal/keywords"
	"github.com/nikhilcherian/jobscout/internal/listing"
	"github.com/nikhilcherian/jobscout/internal/query"
	"github.com/nikhilcherian/jobscout/internal/rank"
	apperrors "github.com/nikhilcherian/jobscout/pkg/errors"
	"github.com/nikhilcherian/jobscout/pkg/logger"
	"github.com/nikhilcherian/jobscout/pkg/metrics"
	"github.com/nikhilcherian/jobscout/pkg/tracing"
)

const (
	// titleField is the provider's listing title key.
	titleField = "job_title"
	// postedAtField is the provider's raw posting timestamp key.
	postedAtField = "job_posted_at_datetime_utc"
	// sourceTag marks listings as provider-sourced in the response.
	sourceTag = "API"

	defaultDatePosted = "all"
)

// Request is the inbound search query. State is accepted and echoed but
// currently unused in query construction.
type Request struct {
	Description string `json:"description"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	DatePosted  string `json:"date_posted"`
}

// Response echoes the request parameters alongside the ranked results.
type Response struct {
	Description string           `json:"description"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	Country     string           `json:"country"`
	DatePosted  string           `json:"date_posted"`
	Results     []listing.Record `json:"results"`
}

// JobSource fetches listings for a query. Failures degrade to zero listings
// inside the source; the pipeline never distinguishes an unavailable
// provider from an empty result set.
type JobSource interface {
	Search(ctx context.Context, query, datePosted, country string) []listing.Record
}

// Pipeline wires the extraction, query, provider, and ranking stages. All
// stages run sequentially within a request; the only shared state is the
// read-only embedding model behind the extractor and scorer.
type Pipeline struct {
	extractor      *keywords.Extractor
	source         JobSource
	ranker         *rank.Ranker
	topKeyphrases  int
	maxResults     int
	defaultCountry string
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// Config carries the pipeline limits and defaults.
type Config struct {
	TopKeyphrases  int
	MaxResults     int
	DefaultCountry string
}

// New creates a Pipeline. Zero limits fall back to 5 keyphrases and 10
// results.
func New(extractor *keywords.Extractor, source JobSource, ranker *rank.Ranker, cfg Config, m *metrics.Metrics) *Pipeline {
	if cfg.TopKeyphrases <= 0 {
		cfg.TopKeyphrases = 5
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = "in"
	}
	return &Pipeline{
		extractor:      extractor,
		source:         source,
		ranker:         ranker,
		topKeyphrases:  cfg.TopKeyphrases,
		maxResults:     cfg.MaxResults,
		defaultCountry: cfg.DefaultCountry,
		logger:         slog.Default().With("component", "pipeline"),
		metrics:        m,
	}
}

// Search runs the full pipeline. A blank description short-circuits with an
// invalid-input error before any work happens. Every other failure mode
// degrades: provider errors become zero listings and scoring failures leave
// listings at score zero in provider order, always producing a success
// shape.
func (p *Pipeline) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Description) == "" {
		p.countSearch("invalid")
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "Please enter a job description.")
	}

	if req.Country == "" {
		req.Country = p.defaultCountry
	}
	if req.DatePosted == "" {
		req.DatePosted = defaultDatePosted
	}

	ctx, span := tracing.StartSpan(ctx, "search", logger.RequestID(ctx))
	defer func() {
		span.End()
		span.Log()
	}()

	log := p.logger
	extractCtx, extractSpan := tracing.StartChildSpan(ctx, "extract")
	keyphrases := p.extractor.Extract(extractCtx, req.Description, p.topKeyphrases)
	extractSpan.SetAttr("keyphrases", len(keyphrases))
	extractSpan.End()
	if p.metrics != nil {
		p.metrics.KeyphrasesExtracted.Observe(float64(len(keyphrases)))
	}

	q := query.Build(keyphrases, req.City)
	log.Debug("built provider query", "keyphrases", keyphrases, "query", q)

	providerCtx, providerSpan := tracing.StartChildSpan(ctx, "provider")
	listings := p.source.Search(providerCtx, q, req.DatePosted, req.Country)
	providerSpan.SetAttr("listings", len(listings))
	providerSpan.End()

	// Ranking runs against the raw description, not the derived query.
	rankCtx, rankSpan := tracing.StartChildSpan(ctx, "rank")
	ranked, err := p.ranker.Rank(rankCtx, req.Description, listings, titleField)
	rankSpan.End()
	if err != nil {
		// Scoring failed; keep provider order with zero scores rather than
		// failing the request.
		log.Warn("ranking degraded to zero scores", "listings", len(listings), "error", err)
		p.countSearch("degraded")
		for _, rec := range listings {
			rec[listing.MatchScoreField] = float64(0)
		}
		ranked = listings
	}

	for _, rec := range ranked {
		rec[listing.SourceField] = sourceTag
		raw := rec.String(postedAtField)
		if raw == "" {
			raw = "N/A"
		}
		rec[listing.DatePostedField] = formatPostedAt(raw)
	}

	if len(ranked) > p.maxResults {
		ranked = ranked[:p.maxResults]
	}
	if ranked == nil {
		ranked = []listing.Record{}
	}

	if p.metrics != nil {
		p.metrics.ResultsReturned.Observe(float64(len(ranked)))
	}
	if len(ranked) == 0 {
		p.countSearch("empty")
	} else {
		p.countSearch("ok")
	}

	log.Info("search completed",
		"keyphrases", len(keyphrases),
		"listings", len(listings),
		"returned", len(ranked),
	)

	return &Response{
		Description: req.Description,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		DatePosted:  req.DatePosted,
		Results:     ranked,
	}, nil
}

func (p *Pipeline) countSearch(outcome string) {
	if p.metrics != nil {
		p.metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	}
}
