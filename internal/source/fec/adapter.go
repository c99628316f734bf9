// Package fec adapts the OpenFEC campaign-finance receipts API to the
// source.Adapter contract.
package fec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civicsearch/internal/domain"
	"github.com/civiclens/civicsearch/internal/source"
)

const (
	defaultBaseURL = "https://api.open.fec.gov/v1/schedules/schedule_a/"
	defaultTimeout = 12 * time.Second
	pageSize       = 50
)

// Config holds adapter settings from the composition root.
type Config struct {
	BaseURL string
	// APIKey is required by OpenFEC. When absent the adapter degrades to
	// returning zero results instead of failing requests.
	APIKey  string
	Timeout time.Duration
	Client  *source.Client
	Logger  *zap.Logger
}

// Adapter implements source.Adapter for federal campaign-finance receipts.
type Adapter struct {
	client  *source.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New creates the FEC adapter.
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
	if a.apiKey == "" {
		a.logger.Warn("fec api key missing, source will return no results",
			zap.String("source", string(domain.SourceFEC)))
	}
	return a
}

// Name returns the stable source identifier.
func (a *Adapter) Name() domain.Source { return domain.SourceFEC }

// Jurisdiction reports the level of government this source covers.
func (a *Adapter) Jurisdiction() domain.Jurisdiction { return domain.JurisdictionFederal }

// DefaultTimeout hints the orchestrator deadline for this source.
func (a *Adapter) DefaultTimeout() time.Duration { return a.timeout }

// receiptsPage is the paginated envelope OpenFEC wraps results in.
type receiptsPage struct {
	Results []json.RawMessage `json:"results"`
}

// Search queries itemized receipts by contributor name.
func (a *Adapter) Search(ctx context.Context, query string, year int) ([]source.RawRecord, error) {
	if a.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("api_key", a.apiKey)
	params.Set("contributor_name", query)
	params.Set("per_page", strconv.Itoa(pageSize))
	params.Set("sort", "-contribution_receipt_date")
	if year != 0 {
		// OpenFEC indexes receipts by two-year election cycle; the cycle is
		// the even year closing the pair.
		cycle := year
		if cycle%2 != 0 {
			cycle++
		}
		params.Set("two_year_transaction_period", strconv.Itoa(cycle))
	}

	body, err := a.client.GetJSON(ctx, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page receiptsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	records := make([]source.RawRecord, 0, len(page.Results))
	for _, row := range page.Results {
		records = append(records, source.RawRecord{Source: a.Name(), Data: row})
	}
	return records, nil
}

// receipt is the subset of Schedule A fields the normalizer reads.
type receipt struct {
	SubID           string   `json:"sub_id"`
	ContributorName string   `json:"contributor_name"`
	Amount          *float64 `json:"contribution_receipt_amount"`
	ReceiptDate     string   `json:"contribution_receipt_date"`
	PDFURL          string   `json:"pdf_url"`
	Committee       struct {
		Name string `json:"name"`
	} `json:"committee"`
}

// Normalize maps one receipt into the canonical result schema.
func (a *Adapter) Normalize(raw source.RawRecord) (domain.SearchResult, error) {
	var r receipt
	if err := json.Unmarshal(raw.Data, &r); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	date := source.ParseDate(r.ReceiptDate)

	return domain.SearchResult{
		Source:      a.Name(),
		Title:       fmt.Sprintf("Contribution from %s to %s", r.ContributorName, r.Committee.Name),
		Description: "Itemized campaign contribution",
		Amount:      r.Amount,
		Date:        date,
		EntityName:  r.ContributorName,
		Agency:      r.Committee.Name,
		URL:         r.PDFURL,
		RecordType:  "campaign_finance",
		Year:        source.YearOf(date),
		RecordID:    r.SubID,
	}, nil
}
