package llm

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

// CredentialStore hands out the secret for a backend. Implemented by
// repository.CredentialRepo; injected so the client never owns a
// process-wide credential cache.
type CredentialStore interface {
	GetSecret(ctx context.Context, backend string) (string, bool, error)
}

// Client runs analysis calls against whichever registered backend the
// caller selects.
type Client struct {
	registry *Registry
	creds    CredentialStore
	http     *http.Client
}

func NewClient(registry *Registry, creds CredentialStore, timeout time.Duration) *Client {
	return &Client{
		registry: registry,
		creds:    creds,
		http:     &http.Client{Timeout: timeout},
	}
}

// Registry exposes the backend catalog for the settings surface.
func (c *Client) Registry() *Registry { return c.registry }

// Analyze sends the articles to the selected backend and returns the
// finished, immutable analysis. The credential is checked before any
// network I/O so a missing key never costs a request.
func (c *Client) Analyze(ctx context.Context, articles []models.Article, backendID, modelID, customPrompt string) (*models.Analysis, error) {
	backend, err := c.registry.Lookup(backendID)
	if err != nil {
		return nil, err
	}

	var apiKey string
	if backend.RequiresKey() {
		secret, ok, err := c.creds.GetSecret(ctx, backendID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.KindConfiguration,
				"no API key configured for backend %q", backendID)
		}
		apiKey = secret
	}

	model := modelID
	if model == "" {
		model = backend.DefaultModel()
	}

	prompt := BuildPrompt(articles, customPrompt)

	req, err := backend.BuildRequest(ctx, apiKey, model, prompt)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "build %s request", backendID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, err, "call %s", backendID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, err, "read %s response", backendID)
	}

	report, err := backend.ParseResponse(resp.StatusCode, body)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, apperr.Wrap(apperr.KindNetwork, err, "%s call failed", backendID)
		}
		return nil, apperr.Wrap(apperr.KindParse, err, "%s response", backendID)
	}

	articleIDs := make(models.StringList, 0, len(articles))
	for _, a := range articles {
		articleIDs = append(articleIDs, a.ID)
	}

	return &models.Analysis{
		ID:             uuid.NewString(),
		ExecutiveBrief: ExtractBrief(report),
		MarkdownReport: report,
		ArticleIDs:     articleIDs,
		CreatedAt:      time.Now(),
		AnalysisType:   models.AnalysisTypeComprehensive,
		LLMBackend:     backendID,
		LLMModel:       model,
	}, nil
}
