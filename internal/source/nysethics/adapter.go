// Package nysethics adapts the New York State lobbying/ethics disclosure
// dataset (Socrata SODA endpoint on data.ny.gov) to the source.Adapter
// contract.
package nysethics

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
	defaultBaseURL = "https://data.ny.gov/resource/t9kf-dqbc.json"
	defaultTimeout = 10 * time.Second
	pageLimit      = 50
)

// Config holds adapter settings from the composition root.
type Config struct {
	BaseURL string
	// AppToken is the Socrata application token. Optional.
	AppToken string
	Timeout  time.Duration
	Client   *source.Client
	Logger   *zap.Logger
}

// Adapter implements source.Adapter for NYS ethics filings.
type Adapter struct {
	client   *source.Client
	baseURL  string
	appToken string
	timeout  time.Duration
	logger   *zap.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New creates the NYS ethics adapter.
func New(cfg Config) *Adapter {
	a := &Adapter{
		client:   cfg.Client,
		baseURL:  cfg.BaseURL,
		appToken: cfg.AppToken,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
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
func (a *Adapter) Name() domain.Source { return domain.SourceNYSEthics }

// Jurisdiction reports the level of government this source covers.
func (a *Adapter) Jurisdiction() domain.Jurisdiction { return domain.JurisdictionNYS }

// DefaultTimeout hints the orchestrator deadline for this source.
func (a *Adapter) DefaultTimeout() time.Duration { return a.timeout }

// Search queries the disclosure dataset via SODA full-text search.
func (a *Adapter) Search(ctx context.Context, query string, year int) ([]source.RawRecord, error) {
	params := url.Values{}
	params.Set("$q", query)
	params.Set("$limit", strconv.Itoa(pageLimit))
	if year != 0 {
		params.Set("reporting_year", strconv.Itoa(year))
	}

	header := http.Header{}
	if a.appToken != "" {
		header.Set("X-App-Token", a.appToken)
	}

	body, err := a.client.GetJSON(ctx, a.baseURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	records := make([]source.RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, source.RawRecord{Source: a.Name(), Data: row})
	}
	return records, nil
}

// disclosureRow is the subset of dataset fields the normalizer reads.
type disclosureRow struct {
	FilingID        string `json:"filing_id"`
	LobbyistName    string `json:"lobbyist_name"`
	ClientName      string `json:"client_name"`
	Compensation    string `json:"compensation"`
	ReportingYear   string `json:"reporting_year"`
	FilingDate      string `json:"filing_date"`
	FilingType      string `json:"filing_type"`
	GovernmentLevel string `json:"government_level"`
}

// Normalize maps one disclosure row into the canonical result schema.
func (a *Adapter) Normalize(raw source.RawRecord) (domain.SearchResult, error) {
	var row disclosureRow
	if err := json.Unmarshal(raw.Data, &row); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	date := source.ParseDate(row.FilingDate)
	year, _ := strconv.Atoi(row.ReportingYear)
	if year == 0 {
		year = source.YearOf(date)
	}

	title := fmt.Sprintf("NYS disclosure: %s for %s", row.LobbyistName, row.ClientName)

	return domain.SearchResult{
		Source:      a.Name(),
		Title:       title,
		Description: row.FilingType,
		Amount:      source.ParseAmount(row.Compensation),
		Date:        date,
		EntityName:  row.ClientName,
		Agency:      row.LobbyistName,
		RecordType:  "ethics_filing",
		Year:        year,
		RecordID:    row.FilingID,
	}, nil
}
