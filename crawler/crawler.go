package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

// SourceError records a single source's ingestion failure. A failed source
// never fails the batch; it just shows up here.
type SourceError struct {
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	Err        error  `json:"-"`
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.SourceName, e.Err)
}

// Crawler ingests syndication feeds and normalizes their items.
type Crawler struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func New(timeout time.Duration, userAgent string, log *zap.Logger) *Crawler {
	return &Crawler{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

// newParser builds a parser for one fetch. gofeed's Parser mutates
// internal translator state on first parse, so it must not be shared
// across the FetchMultiple goroutines; the http.Client is.
func (c *Crawler) newParser() *gofeed.Parser {
	parser := gofeed.NewParser()
	parser.UserAgent = c.userAgent
	parser.Client = c.client
	return parser
}

// FetchSource fetches and normalizes one source. windowHours > 0 drops
// items published before now−window; 0 lets everything through.
func (c *Crawler) FetchSource(ctx context.Context, source models.Source, windowHours int) ([]models.Article, error) {
	if source.Type != models.SourceTypeRSS {
		return nil, apperr.New(apperr.KindConfiguration,
			"source %s has unsupported type %q", source.Name, source.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	feed, err := c.newParser().ParseURLWithContext(source.URL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, apperr.Wrap(apperr.KindNetwork, err, "fetch %s", source.Name)
		}
		if ctx.Err() != nil {
			return nil, apperr.Wrap(apperr.KindNetwork, err, "fetch %s", source.Name)
		}
		return nil, apperr.Wrap(apperr.KindParse, err, "parse %s", source.Name)
	}

	fetchedAt := c.now()
	var cutoff time.Time
	if windowHours > 0 {
		cutoff = fetchedAt.Add(-time.Duration(windowHours) * time.Hour)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		article := c.normalize(item, source, fetchedAt)
		if windowHours > 0 && article.PublishedAt.Before(cutoff) {
			continue
		}
		articles = append(articles, article)
	}

	c.log.Debug("fetched source",
		zap.String("source", source.Name),
		zap.Int("items", len(feed.Items)),
		zap.Int("kept", len(articles)))
	return articles, nil
}

// FetchMultiple fans out one goroutine per source and joins all of them;
// a slow or broken source never cancels its siblings. Results are folded
// in source order after the join, deduplicated first-seen-wins by
// canonical URL (title when the URL is empty).
func (c *Crawler) FetchMultiple(ctx context.Context, sources []models.Source, windowHours int) ([]models.Article, []SourceError) {
	type result struct {
		articles []models.Article
		err      error
	}
	results := make([]result, len(sources))

	done := make(chan int, len(sources))
	for i := range sources {
		go func(i int) {
			articles, err := c.FetchSource(ctx, sources[i], windowHours)
			results[i] = result{articles: articles, err: err}
			done <- i
		}(i)
	}
	for range sources {
		<-done
	}

	// Single-threaded fold after the join.
	seen := make(map[string]struct{})
	var articles []models.Article
	var errs []SourceError
	for i, res := range results {
		if res.err != nil {
			c.log.Warn("source fetch failed",
				zap.String("source", sources[i].Name),
				zap.Error(res.err))
			errs = append(errs, SourceError{
				SourceID:   sources[i].ID,
				SourceName: sources[i].Name,
				Err:        res.err,
			})
			continue
		}
		for _, article := range res.articles {
			key := article.URL
			if key == "" {
				key = article.Title
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			articles = append(articles, article)
		}
	}
	return articles, errs
}

// normalize converts one feed item into an Article. Content precedence is
// encoded/full content over summary text; gofeed folds content:encoded and
// Atom content into Item.Content, and snippet/description into
// Item.Description. Items without a publish date get the fetch time.
func (c *Crawler) normalize(item *gofeed.Item, source models.Source, fetchedAt time.Time) models.Article {
	content := item.Content
	if content == "" {
		content = item.Description
	}

	published := fetchedAt
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return models.Article{
		ID:          models.ArticleID(item.Link, item.Title),
		Title:       item.Title,
		URL:         item.Link,
		Content:     content,
		PublishedAt: published,
		SourceName:  source.Name,
		Industry:    source.Industry,
		Tags:        models.StringList(item.Categories),
		CreatedAt:   fetchedAt,
	}
}
