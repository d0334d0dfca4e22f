package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smcatl/skyyield-backend/internal/commission/domain"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
)

var oneHundred = decimal.NewFromInt(100)

// Calculate computes a commission amount from a partner's structure and the
// per-month operands. The stored amount keeps full precision; the details
// string rounds to 2 decimal places for display.
//
// Edge policy, kept intentionally asymmetric: percentage without a revenue
// basis is an error, hybrid without one silently drops the percentage term.
// per_referral never fails; a missing count is zero.
func Calculate(structure domain.Structure, input domain.CalcInput) (domain.CalcResult, error) {
	switch structure.Type {
	case partnerdomain.StructureFlatFee:
		amount := structure.FlatFeeMonthly
		return domain.CalcResult{
			Amount:  amount,
			Method:  structure.Type,
			Details: fmt.Sprintf("Flat monthly fee: $%s", amount.StringFixed(2)),
		}, nil

	case partnerdomain.StructurePercentage:
		if input.RevenueBasis == nil {
			return domain.CalcResult{}, domain.ErrMissingRevenueBasis
		}
		amount := input.RevenueBasis.Mul(structure.Percentage).Div(oneHundred)
		return domain.CalcResult{
			Amount: amount,
			Method: structure.Type,
			Details: fmt.Sprintf("%s%% of $%s = $%s",
				structure.Percentage.String(),
				input.RevenueBasis.StringFixed(2),
				amount.StringFixed(2)),
		}, nil

	case partnerdomain.StructurePerReferral:
		amount := structure.PerReferralAmount.Mul(decimal.NewFromInt(input.ReferralCount))
		return domain.CalcResult{
			Amount: amount,
			Method: structure.Type,
			Details: fmt.Sprintf("%d referrals x $%s = $%s",
				input.ReferralCount,
				structure.PerReferralAmount.StringFixed(2),
				amount.StringFixed(2)),
		}, nil

	case partnerdomain.StructureHybrid:
		amount := structure.FlatFeeMonthly
		details := fmt.Sprintf("Flat $%s", structure.FlatFeeMonthly.StringFixed(2))
		if input.RevenueBasis != nil {
			pctPart := input.RevenueBasis.Mul(structure.Percentage).Div(oneHundred)
			amount = amount.Add(pctPart)
			details = fmt.Sprintf("%s + %s%% of $%s", details,
				structure.Percentage.String(),
				input.RevenueBasis.StringFixed(2))
		}
		details = fmt.Sprintf("%s = $%s", details, amount.StringFixed(2))
		return domain.CalcResult{
			Amount:  amount,
			Method:  structure.Type,
			Details: details,
		}, nil

	default:
		return domain.CalcResult{}, domain.ErrNoStructure
	}
}
