// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package ranking serves a user's paginated feed of recent articles ordered
// by the user's model, or by recency when the user has no model yet.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/calendar"
	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/embedding"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/modelstore"
	"github.com/tomtom215/feedrank/internal/validation"
)

// ErrInvalidPage is returned for a negative page index.
var ErrInvalidPage = errors.New("invalid page")

// Defaults applied when the configuration leaves a field unset.
const (
	DefaultPageSize       = 12
	DefaultWindow         = 24 * time.Hour
	DefaultAbstractLength = 150
)

// FeedRequest is the input of RankedFeed. An empty UserID asks for the
// anonymous feed.
type FeedRequest struct {
	UserID string `json:"user_id"`
	Page   int    `json:"page" validate:"gte=0"`
}

// Validate returns an error matching ErrInvalidPage and wrapping the
// *validation.RequestValidationError when the request is rejected.
func (q *FeedRequest) Validate() error {
	if verr := validation.ValidateStruct(q); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPage, verr)
	}
	return nil
}

// ArticleSource lists candidate articles.
type ArticleSource interface {
	RecentArticles(ctx context.Context, since int64) ([]models.CandidateArticle, error)
}

// ModelSource returns a user's current model. modelstore.Registry implements it.
type ModelSource interface {
	Get(ctx context.Context, userID string) (*modelstore.Snapshot, error)
}

// FeedRef identifies the source of an item.
type FeedRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Favicon string `json:"favicon"`
}

// Item is one ranked article as shown to the user. Scores are not exposed.
type Item struct {
	ID        string  `json:"id"`
	Feed      FeedRef `json:"feed"`
	Title     string  `json:"title"`
	Abstract  string  `json:"abstract"`
	Published string  `json:"published"`
	Cover     string  `json:"cover"`
	Link      string  `json:"link"`
}

// Feed is one page of a user's ranking. Articles holds every item from the
// top of the ranking through the end of the requested page.
type Feed struct {
	UserID string `json:"user_id"`
	Page   int    `json:"page"`

	// ColdStart is true when the ranking fell back to recency order.
	ColdStart bool `json:"cold_start"`

	// HasMore reports that a further page would add items.
	HasMore bool `json:"has_more"`

	Articles []Item `json:"articles"`
}

// Ranker orders candidate articles for a user. It only reads models and
// never waits on training.
type Ranker struct {
	articles  ArticleSource
	models    ModelSource
	embedder  embedding.Embedder
	formatter *calendar.Formatter
	cfg       config.RankingConfig
	logger    zerolog.Logger

	now func() time.Time
}

// NewRanker creates a Ranker. embedder may be nil; when set, candidates
// without a stored vector are embedded on demand for personalized users.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewRanker(articles ArticleSource, modelSource ModelSource, embedder embedding.Embedder, cfg *config.RankingConfig, logger zerolog.Logger) (*Ranker, error) {
	formatter, err := calendar.NewFormatter(cfg)
	if err != nil {
		return nil, err
	}

	c := *cfg
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.AbstractLength <= 0 {
		c.AbstractLength = DefaultAbstractLength
	}

	return &Ranker{
		articles:  articles,
		models:    modelSource,
		embedder:  embedder,
		formatter: formatter,
		cfg:       c,
		logger:    logger.With().Str("component", "ranker").Logger(),
		now:       time.Now,
	}, nil
}

type scored struct {
	article *models.CandidateArticle
	score   float64
}

// RankedFeed returns pages 0 through page of userID's ranking.
func (r *Ranker) RankedFeed(ctx context.Context, userID string, page int) (*Feed, error) {
	req := FeedRequest{UserID: userID, Page: page}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	since := r.now().Add(-r.cfg.Window).Unix()
	candidates, err := r.articles.RecentArticles(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	snap := r.loadModel(ctx, userID)
	ranked := make([]scored, len(candidates))
	for i := range candidates {
		ranked[i] = scored{article: &candidates[i]}
		if snap != nil {
			ranked[i].score = r.score(ctx, snap, &candidates[i])
		}
	}
	// Candidates arrive newest first, so ties keep recency order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit := (page + 1) * r.cfg.PageSize
	if limit > len(ranked) {
		limit = len(ranked)
	}

	feed := &Feed{
		UserID:    userID,
		Page:      page,
		ColdStart: snap == nil,
		HasMore:   limit < len(ranked),
		Articles:  make([]Item, 0, limit),
	}
	for _, s := range ranked[:limit] {
		feed.Articles = append(feed.Articles, r.item(s.article))
	}

	metrics.RecordRanking(feed.ColdStart, time.Since(start))
	return feed, nil
}

// loadModel returns nil for cold start. Anonymous users and load failures
// other than a missing model are also served cold start.
func (r *Ranker) loadModel(ctx context.Context, userID string) *modelstore.Snapshot {
	if userID == "" {
		return nil
	}
	snap, err := r.models.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, modelstore.ErrModelNotFound) {
			r.logger.Warn().Err(err).Str("user_id", userID).Msg("model load failed, serving cold start")
		}
		return nil
	}
	return snap
}

// score predicts the article's stars, or 0 when the article has no usable
// vector of the model's dimensionality.
func (r *Ranker) score(ctx context.Context, snap *modelstore.Snapshot, a *models.CandidateArticle) float64 {
	vec := r.vector(ctx, a)
	if vec == nil || len(vec) != snap.Model.Dim() {
		return 0
	}
	p := snap.Model.Predict(vec)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if r.cfg.IntegerStars {
		return math.Trunc(p)
	}
	return p
}

func (r *Ranker) vector(ctx context.Context, a *models.CandidateArticle) []float64 {
	if a.HasVector() {
		vec, err := embedding.ParseVector(*a.Vector)
		if err != nil {
			r.logger.Debug().Err(err).Str("article_id", a.ID).Msg("unusable article vector")
			return nil
		}
		return vec
	}
	if r.embedder == nil {
		return nil
	}
	vec, err := r.embedder.Embed(ctx, embedding.ArticleText(a.Title, a.Abstract))
	if err != nil {
		r.logger.Debug().Err(err).Str("article_id", a.ID).Msg("on-demand embedding failed")
		return nil
	}
	return vec
}

func (r *Ranker) item(a *models.CandidateArticle) Item {
	return Item{
		ID:        a.ID,
		Feed:      FeedRef{ID: a.FeedID, Name: a.FeedName, Favicon: a.FeedFavicon},
		Title:     a.Title,
		Abstract:  truncateRunes(a.Abstract, r.cfg.AbstractLength),
		Published: r.formatter.Format(a.PublishedAt),
		Cover:     a.Cover,
		Link:      a.Link,
	}
}

// truncateRunes keeps the first n runes of s and appends "..." when s is longer.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
