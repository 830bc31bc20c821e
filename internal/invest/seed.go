package invest

import "context"

// SeedCatalogue loads the demo plan catalogue and AI insight set into
// the store. Existing entries with the same identity are left as-is,
// so repeated startups are safe.
func (service *Service) SeedCatalogue(ctx context.Context) error {
	if err := service.store.SeedPlans(ctx, DefaultPlans()); err != nil {
		return err
	}
	return service.store.SeedInsights(ctx, DefaultInsights())
}

// DefaultPlans returns the demo investment plan catalogue.
func DefaultPlans() []InvestmentPlan {
	return []InvestmentPlan{
		{
			PlanID:                 "conservative-income",
			Name:                   "Conservative Income Plan",
			Description:            "Capital preservation with steady income from high-grade bonds and dividend equities.",
			MinimumInvestmentRange: "$500 - $5,000",
			WeeklyReturn:           0.02,
			RiskLevel:              "Low",
			AINarrative:            "Model allocation favors short-duration treasuries while volatility stays elevated.",
		},
		{
			PlanID:                 "balanced-growth",
			Name:                   "Balanced Growth Portfolio",
			Description:            "A diversified blend of equities and fixed income tuned for long-term growth.",
			MinimumInvestmentRange: "$1,000 - $25,000",
			WeeklyReturn:           0.05,
			RiskLevel:              "Medium",
			AINarrative:            "Momentum signals rotate the equity sleeve toward industrials this cycle.",
		},
		{
			PlanID:                 "high-yield-equities",
			Name:                   "High-Yield Equities Focus",
			Description:            "Concentrated exposure to high-beta growth names for aggressive investors.",
			MinimumInvestmentRange: "$2,500 - $100,000",
			WeeklyReturn:           0.08,
			RiskLevel:              "High",
			AINarrative:            "Earnings revisions support an overweight in semiconductor and AI infrastructure names.",
		},
	}
}

// DefaultInsights returns the simulated market insight set shown on
// the dashboard.
func DefaultInsights() []AIInsight {
	return []AIInsight{
		{
			SignalType:      "momentum",
			Value:           0.72,
			Explanation:     "Breadth across large-cap technology is widening after a narrow first quarter.",
			Confidence:      0.81,
			RelevanceScore:  0.9,
			TimeHorizon:     "short-term",
			ImpactPotential: "high",
		},
		{
			SignalType:      "macro",
			Value:           -0.18,
			Explanation:     "Rate-cut expectations are cooling, which pressures long-duration assets.",
			Confidence:      0.64,
			RelevanceScore:  0.75,
			TimeHorizon:     "medium-term",
			ImpactPotential: "moderate",
		},
		{
			SignalType:      "sentiment",
			Value:           0.41,
			Explanation:     "Retail flows into diversified funds remain above the trailing-year average.",
			Confidence:      0.58,
			RelevanceScore:  0.6,
			TimeHorizon:     "long-term",
			ImpactPotential: "low",
		},
	}
}
