package aggregate

import (
	"github.com/printpower/storefront/internal/donation/domain"
	"github.com/shopspring/decimal"
)

// CauseStats summarizes one cause across its full donation history.
type CauseStats struct {
	Cause         string `json:"cause"`
	TotalRaised   string `json:"total_raised"`
	DonationCount int64  `json:"donation_count"`
	UniqueDonors  int64  `json:"unique_donors"`
	AvgDonation   string `json:"avg_donation"`
}

// StatsFor reduces the rows of a single cause into summary stats. Rows
// belonging to other causes are ignored, so callers may pass an
// unfiltered set.
func StatsFor(cause string, rows []*domain.Donation) CauseStats {
	total := decimal.Zero
	var count int64
	donors := map[string]struct{}{}

	for _, row := range rows {
		if row == nil || row.Cause != cause {
			continue
		}
		total = total.Add(row.Amount)
		count++
		donors[row.DonorName] = struct{}{}
	}

	avg := decimal.Zero
	if count > 0 {
		avg = total.Div(decimal.NewFromInt(count))
	}

	return CauseStats{
		Cause:         cause,
		TotalRaised:   total.StringFixed(2),
		DonationCount: count,
		UniqueDonors:  int64(len(donors)),
		AvgDonation:   avg.StringFixed(2),
	}
}
