// Package senatelda adapts the US Senate Lobbying Disclosure Act filings API
// to the source.Adapter contract.
package senatelda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/domain"
	"github.com/civiclens/civicsearch/internal/source"
)

const (
	defaultBaseURL = "https://lda.senate.gov/api/v1/filings/"
	defaultTimeout = 12 * time.Second
	pageSize       = 25
)

// Config holds adapter settings from the composition root.
type Config struct {
	BaseURL string
	// APIKey raises the anonymous throttle when present. Optional.
	APIKey  string
	Timeout time.Duration
	Client  *source.Client
	Logger  *zap.Logger
}

// Adapter implements source.Adapter for federal lobbying filings.
type Adapter struct {
	client  *source.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New creates the Senate LDA adapter.
func New(cfg Config) *Adapter {
	a := &Adapter{
		client:  cfg.Client,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if a.baseURL == "" {
		a.baseURL = defaultBaseURL
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.client == nil {
		a.client = source.NewClient(nil, 0)
	}
	return a
}

// Name returns the stable source identifier.
func (a *Adapter) Name() domain.Source { return domain.SourceSenateLDA }

// Jurisdiction reports the level of government this source covers.
func (a *Adapter) Jurisdiction() domain.Jurisdiction { return domain.JurisdictionFederal }

// DefaultTimeout hints the orchestrator deadline for this source.
func (a *Adapter) DefaultTimeout() time.Duration { return a.timeout }

// filingsPage is the paginated envelope the LDA API wraps results in.
type filingsPage struct {
	Results []json.RawMessage `json:"results"`
}

// Search queries lobbying filings by registrant/client name.
func (a *Adapter) Search(ctx context.Context, query string, year int) ([]source.RawRecord, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(pageSize))
	if year != 0 {
		params.Set("filing_year", strconv.Itoa(year))
	}

	header := http.Header{}
	if a.apiKey != "" {
		header.Set("Authorization", "Token "+a.apiKey)
	}

	body, err := a.client.GetJSON(ctx, a.baseURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var page filingsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	records := make([]source.RawRecord, 0, len(page.Results))
	for _, row := range page.Results {
		records = append(records, source.RawRecord{Source: a.Name(), Data: row})
	}
	return records, nil
}

// filing is the subset of LDA filing fields the normalizer reads.
type filing struct {
	FilingUUID  string `json:"filing_uuid"`
	FilingYear  int    `json:"filing_year"`
	Income      string `json:"income"`
	Expenses    string `json:"expenses"`
	DatePosted  string `json:"dt_posted"`
	DocumentURL string `json:"filing_document_url"`
	FilingType  string `json:"filing_type_display"`
	Registrant  struct {
		Name string `json:"name"`
	} `json:"registrant"`
	Client struct {
		Name string `json:"name"`
	} `json:"client"`
}

// Normalize maps one lobbying filing into the canonical result schema.
func (a *Adapter) Normalize(raw source.RawRecord) (domain.SearchResult, error) {
	var f filing
	if err := json.Unmarshal(raw.Data, &f); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	// Income is what the registrant was paid; expense filings report the
	// other column. Whichever is present becomes the record amount.
	amount := source.ParseAmount(f.Income)
	if amount == nil {
		amount = source.ParseAmount(f.Expenses)
	}

	date := source.ParseDate(f.DatePosted)
	year := f.FilingYear
	if year == 0 {
		year = source.YearOf(date)
	}

	return domain.SearchResult{
		Source:      a.Name(),
		Title:       fmt.Sprintf("Lobbying filing: %s for %s", f.Registrant.Name, f.Client.Name),
		Description: f.FilingType,
		Amount:      amount,
		Date:        date,
		EntityName:  f.Client.Name,
		Agency:      f.Registrant.Name,
		URL:         f.DocumentURL,
		RecordType:  "lobbying",
		Year:        year,
		RecordID:    f.FilingUUID,
	}, nil
}
