package alphavantage

import (
	"context"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

const fiscalDateLayout = "2006-01-02"

// overviewResponse mirrors the OVERVIEW payload, numbers as strings
type overviewResponse struct {
	apiError
	Symbol           string `json:"Symbol"`
	PERatio          string `json:"PERatio"`
	PriceToBookRatio string `json:"PriceToBookRatio"`
	ReturnOnEquity   string `json:"ReturnOnEquityTTM"`
}

// quarterlyReport mirrors one quarter in a statement payload
type quarterlyReport struct {
	FiscalDateEnding        string `json:"fiscalDateEnding"`
	TotalAssets             string `json:"totalAssets"`
	TotalLiabilities        string `json:"totalLiabilities"`
	TotalCurrentAssets      string `json:"totalCurrentAssets"`
	TotalCurrentLiabilities string `json:"totalCurrentLiabilities"`
	ShortLongTermDebtTotal  string `json:"shortLongTermDebtTotal"`
	ShortTermDebt           string `json:"shortTermDebt"`
	LongTermDebt            string `json:"longTermDebt"`
	TotalRevenue            string `json:"totalRevenue"`
	RetainedEarnings        string `json:"retainedEarnings"`
}

type statementResponse struct {
	apiError
	Symbol           string            `json:"symbol"`
	QuarterlyReports []quarterlyReport `json:"quarterlyReports"`
}

// GetOverview returns valuation and profitability ratios for a symbol
func (c *Client) GetOverview(ctx context.Context, symbol string) (*contracts.Overview, error) {
	var resp overviewResponse
	cached, err := c.get(ctx, "OVERVIEW", symbol, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, contracts.NewProviderError("alphavantage", "overview", err)
	}
	if resp.Symbol == "" {
		return nil, contracts.ErrInsufficientData
	}
	if !cached {
		c.cacheResult(ctx, "OVERVIEW", symbol, resp)
	}

	return &contracts.Overview{
		Symbol:           resp.Symbol,
		PERatio:          avFloat(resp.PERatio),
		PriceToBookRatio: avFloat(resp.PriceToBookRatio),
		// The API reports ROE as a fraction; signals work in percent
		ReturnOnEquity: avFloat(resp.ReturnOnEquity) * 100,
	}, nil
}

// GetBalanceSheet returns up to the 8 most recent quarterly balance
// sheets, newest first.
func (c *Client) GetBalanceSheet(ctx context.Context, symbol string) ([]contracts.QuarterlyReport, error) {
	return c.getStatement(ctx, "BALANCE_SHEET", symbol)
}

// GetIncomeStatement returns up to the 8 most recent quarterly income
// statements, newest first.
func (c *Client) GetIncomeStatement(ctx context.Context, symbol string) ([]contracts.QuarterlyReport, error) {
	return c.getStatement(ctx, "INCOME_STATEMENT", symbol)
}

func (c *Client) getStatement(ctx context.Context, function, symbol string) ([]contracts.QuarterlyReport, error) {
	var resp statementResponse
	cached, err := c.get(ctx, function, symbol, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, contracts.NewProviderError("alphavantage", function, err)
	}
	if len(resp.QuarterlyReports) == 0 {
		return nil, contracts.ErrInsufficientData
	}
	if !cached {
		c.cacheResult(ctx, function, symbol, resp)
	}

	limit := len(resp.QuarterlyReports)
	if limit > contracts.GrowthQuarters {
		limit = contracts.GrowthQuarters
	}

	reports := make([]contracts.QuarterlyReport, 0, limit)
	for _, raw := range resp.QuarterlyReports[:limit] {
		reports = append(reports, toContractReport(raw))
	}

	return reports, nil
}

func toContractReport(raw quarterlyReport) contracts.QuarterlyReport {
	date, _ := time.Parse(fiscalDateLayout, raw.FiscalDateEnding)

	totalDebt := avFloat(raw.ShortLongTermDebtTotal)
	if totalDebt == 0 {
		totalDebt = avFloat(raw.ShortTermDebt) + avFloat(raw.LongTermDebt)
	}

	return contracts.QuarterlyReport{
		FiscalDateEnding:        date,
		TotalAssets:             avFloat(raw.TotalAssets),
		TotalLiabilities:        avFloat(raw.TotalLiabilities),
		TotalCurrentAssets:      avFloat(raw.TotalCurrentAssets),
		TotalCurrentLiabilities: avFloat(raw.TotalCurrentLiabilities),
		TotalDebt:               totalDebt,
		TotalRevenue:            avFloat(raw.TotalRevenue),
		RetainedEarnings:        avFloat(raw.RetainedEarnings),
	}
}
