package generator

import "newscurator/internal/domain"

// Stop reasons reported when a supplement pass decides not to generate.
const (
	ReasonOK               = "ok"
	ReasonDailyMaxReached  = "daily_max_reached"
	ReasonAIHardCapReached = "ai_hard_cap_reached"
	ReasonAIBalanceLimit   = "ai_balance_limit"
	ReasonLimitsReached    = "limits_reached"
)

// Plan is the outcome of the daily admission-control policy. The intermediate
// slot counts are retained for logging and the progress view.
type Plan struct {
	ToGenerate int    `json:"toGenerate"`
	Reason     string `json:"reason"`

	NeededForMin     int `json:"neededForMin"`
	RoomToMax        int `json:"roomToMax"`
	RemainingAISlots int `json:"remainingAiSlots"`
	BalanceSlots     int `json:"balanceSlots"`
}

// PlanSupplement decides how many AI articles to request today.
//
// Rules, in order:
//  1. Total today must stay under the daily maximum.
//  2. AI-authored count must stay under the daily AI hard cap.
//  3. AI-authored count may never exceed the scraped count.
//  4. Otherwise generate at least one, enough to reach the daily minimum if
//     the other limits allow it.
func PlanSupplement(counts domain.DailyCounts, settings domain.ContentSettings) Plan {
	total := counts.Scraped + counts.AIGenerated

	if total >= settings.DailyMaxArticles {
		return Plan{Reason: ReasonDailyMaxReached}
	}

	if counts.AIGenerated >= settings.DailyMaxAIArticles {
		return Plan{Reason: ReasonAIHardCapReached}
	}

	balanceSlots := counts.Scraped - counts.AIGenerated
	if balanceSlots < 0 {
		balanceSlots = 0
	}
	if balanceSlots == 0 {
		return Plan{Reason: ReasonAIBalanceLimit}
	}

	neededForMin := settings.DailyMinArticles - total
	if neededForMin < 0 {
		neededForMin = 0
	}
	roomToMax := settings.DailyMaxArticles - total
	remainingAISlots := settings.DailyMaxAIArticles - counts.AIGenerated

	toGenerate := max(neededForMin, 1)
	toGenerate = min(toGenerate, remainingAISlots)
	toGenerate = min(toGenerate, balanceSlots)
	toGenerate = min(toGenerate, roomToMax)

	plan := Plan{
		ToGenerate:       toGenerate,
		Reason:           ReasonOK,
		NeededForMin:     neededForMin,
		RoomToMax:        roomToMax,
		RemainingAISlots: remainingAISlots,
		BalanceSlots:     balanceSlots,
	}
	if toGenerate <= 0 {
		plan.ToGenerate = 0
		plan.Reason = ReasonLimitsReached
	}
	return plan
}
