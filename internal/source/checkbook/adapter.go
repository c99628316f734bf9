// Package checkbook adapts the NYC Checkbook contracts feed (Socrata SODA
// endpoint) to the source.Adapter contract.
package checkbook

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
	defaultBaseURL = "https://data.cityofnewyork.us/resource/mxwn-eh3b.json"
	defaultTimeout = 10 * time.Second
	pageLimit      = 50
)

// Config holds adapter settings from the composition root.
type Config struct {
	BaseURL string
	// AppToken is the Socrata application token. Optional: anonymous access
	// works at a lower upstream throttle.
	AppToken string
	Timeout  time.Duration
	Client   *source.Client
	Logger   *zap.Logger
}

// Adapter implements source.Adapter for NYC contract records.
type Adapter struct {
	client   *source.Client
	baseURL  string
	appToken string
	timeout  time.Duration
	logger   *zap.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New creates the checkbook adapter.
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
func (a *Adapter) Name() domain.Source { return domain.SourceCheckbook }

// Jurisdiction reports the level of government this source covers.
func (a *Adapter) Jurisdiction() domain.Jurisdiction { return domain.JurisdictionNYC }

// DefaultTimeout hints the orchestrator deadline for this source.
func (a *Adapter) DefaultTimeout() time.Duration { return a.timeout }

// Search queries the contracts dataset via SODA full-text search.
func (a *Adapter) Search(ctx context.Context, query string, year int) ([]source.RawRecord, error) {
	params := url.Values{}
	params.Set("$q", query)
	params.Set("$limit", strconv.Itoa(pageLimit))
	params.Set("$order", "start_date DESC")
	if year != 0 {
		params.Set("$where", fmt.Sprintf(
			"start_date >= '%d-01-01T00:00:00' AND start_date < '%d-01-01T00:00:00'", year, year+1,
		))
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

// contractRow is the subset of SODA contract fields the normalizer reads.
type contractRow struct {
	ContractID     string `json:"contract_id"`
	Purpose        string `json:"purpose"`
	VendorName     string `json:"vendor_name"`
	AgencyName     string `json:"agency_name"`
	CurrentAmount  string `json:"current_amount"`
	StartDate      string `json:"start_date"`
	CategoryDescr  string `json:"category_descr"`
	ContractDetail string `json:"contract_detail_url"`
}

// Normalize maps one contract row into the canonical result schema.
func (a *Adapter) Normalize(raw source.RawRecord) (domain.SearchResult, error) {
	var row contractRow
	if err := json.Unmarshal(raw.Data, &row); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%w: %v", source.ErrMalformedResponse, err)
	}

	date := source.ParseDate(row.StartDate)
	title := row.Purpose
	if title == "" {
		title = "NYC contract " + row.ContractID
	}

	return domain.SearchResult{
		Source:      a.Name(),
		Title:       title,
		Description: row.CategoryDescr,
		Amount:      source.ParseAmount(row.CurrentAmount),
		Date:        date,
		EntityName:  row.VendorName,
		Agency:      row.AgencyName,
		URL:         row.ContractDetail,
		RecordType:  "contract",
		Year:        source.YearOf(date),
		RecordID:    row.ContractID,
	}, nil
}
