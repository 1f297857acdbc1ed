package yahoo

import (
	"context"
	"fmt"

	"Halcon/internal/domain/models"
	"Halcon/pkg/retry"
)

const summaryModules = "financialData,defaultKeyStatistics,balanceSheetHistory,incomeStatementHistory"

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResult struct {
	FinancialData struct {
		FreeCashflow      rawValue `json:"freeCashflow"`
		OperatingCashflow rawValue `json:"operatingCashflow"`
		TotalDebt         rawValue `json:"totalDebt"`
		TotalCash         rawValue `json:"totalCash"`
		Ebitda            rawValue `json:"ebitda"`
		TotalRevenue      rawValue `json:"totalRevenue"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		SharesOutstanding rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
	BalanceSheetHistory struct {
		Statements []struct {
			TotalCurrentAssets      rawValue `json:"totalCurrentAssets"`
			TotalCurrentLiabilities rawValue `json:"totalCurrentLiabilities"`
			RetainedEarnings        rawValue `json:"retainedEarnings"`
			TotalLiab               rawValue `json:"totalLiab"`
			TotalAssets             rawValue `json:"totalAssets"`
		} `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	IncomeStatementHistory struct {
		Statements []struct {
			TotalRevenue rawValue `json:"totalRevenue"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *Client) quoteSummary(ctx context.Context, symbol string) (quoteSummaryResult, error) {
	var out quoteSummaryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{"modules": summaryModules}).
		SetResult(&out).
		Get("/v10/finance/quoteSummary/{symbol}")
	if err != nil {
		return quoteSummaryResult{}, fmt.Errorf("quote summary %s: %w", symbol, err)
	}
	if resp.StatusCode() == 404 {
		return quoteSummaryResult{}, retry.Permanent(fmt.Errorf("quote summary %s: not found", symbol))
	}
	if resp.IsError() {
		return quoteSummaryResult{}, fmt.Errorf("quote summary %s: status %d", symbol, resp.StatusCode())
	}
	if e := out.QuoteSummary.Error; e != nil {
		return quoteSummaryResult{}, retry.Permanent(fmt.Errorf("quote summary %s: %s: %s", symbol, e.Code, e.Description))
	}
	if len(out.QuoteSummary.Result) == 0 {
		return quoteSummaryResult{}, fmt.Errorf("quote summary %s: empty result", symbol)
	}
	return out.QuoteSummary.Result[0], nil
}

// apply copies reported figures into f. The equity quote wins for shares.
func (r quoteSummaryResult) apply(f *models.Fundamentals) {
	fd := r.FinancialData
	f.Set(models.FigFreeCashFlow, fd.FreeCashflow.Raw)
	f.Set(models.FigOperatingCashFlow, fd.OperatingCashflow.Raw)
	f.Set(models.FigTotalDebt, fd.TotalDebt.Raw)
	f.Set(models.FigTotalCash, fd.TotalCash.Raw)
	f.Set(models.FigEBITDA, fd.Ebitda.Raw)
	f.Set(models.FigTotalRevenue, fd.TotalRevenue.Raw)

	if !f.Has(models.FigSharesOutstanding) {
		f.Set(models.FigSharesOutstanding, r.DefaultKeyStatistics.SharesOutstanding.Raw)
	}
	if !f.Has(models.FigTotalRevenue) && len(r.IncomeStatementHistory.Statements) > 0 {
		f.Set(models.FigTotalRevenue, r.IncomeStatementHistory.Statements[0].TotalRevenue.Raw)
	}

	if len(r.BalanceSheetHistory.Statements) > 0 {
		bs := r.BalanceSheetHistory.Statements[0]
		f.Set(models.FigWorkingCapital, bs.TotalCurrentAssets.Raw-bs.TotalCurrentLiabilities.Raw)
		f.Set(models.FigRetainedEarnings, bs.RetainedEarnings.Raw)
		f.Set(models.FigTotalLiabilities, bs.TotalLiab.Raw)
		f.Set(models.FigTotalAssets, bs.TotalAssets.Raw)
	}
}
