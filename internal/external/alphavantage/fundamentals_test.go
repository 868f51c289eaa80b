package alphavantage

import (
	"testing"
)

func TestAVFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{"-0.5", -0.5},
		{"None", 0},
		{"-", 0},
		{"", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := avFloat(tt.in); got != tt.want {
				t.Errorf("avFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToContractReport(t *testing.T) {
	raw := quarterlyReport{
		FiscalDateEnding:        "2026-03-31",
		TotalAssets:             "1000",
		TotalLiabilities:        "400",
		TotalCurrentAssets:      "300",
		TotalCurrentLiabilities: "150",
		ShortLongTermDebtTotal:  "None",
		ShortTermDebt:           "50",
		LongTermDebt:            "120",
		TotalRevenue:            "900",
		RetainedEarnings:        "250",
	}

	report := toContractReport(raw)

	if report.FiscalDateEnding.Year() != 2026 || report.FiscalDateEnding.Month() != 3 {
		t.Errorf("fiscal date = %v, want 2026-03-31", report.FiscalDateEnding)
	}
	// Debt total falls back to short + long when the combined field is missing
	if report.TotalDebt != 170 {
		t.Errorf("total debt = %v, want 170", report.TotalDebt)
	}
	if report.TotalRevenue != 900 || report.RetainedEarnings != 250 {
		t.Errorf("revenue/retained = %v/%v, want 900/250", report.TotalRevenue, report.RetainedEarnings)
	}
}

func TestToContractReport_PrefersCombinedDebt(t *testing.T) {
	raw := quarterlyReport{
		FiscalDateEnding:       "2026-03-31",
		ShortLongTermDebtTotal: "200",
		ShortTermDebt:          "50",
		LongTermDebt:           "120",
	}

	if got := toContractReport(raw).TotalDebt; got != 200 {
		t.Errorf("total debt = %v, want 200", got)
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		e       apiError
		wantErr bool
	}{
		{"clean", apiError{}, false},
		{"rate limit note", apiError{Note: "5 calls per minute"}, true},
		{"bad symbol", apiError{ErrorMessage: "Invalid API call"}, true},
		{"info notice", apiError{Information: "premium endpoint"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.err() != nil; got != tt.wantErr {
				t.Errorf("err() != nil = %v, want %v", got, tt.wantErr)
			}
		})
	}
}
