package analytics

import (
	"sort"

	"LoadLedger/internal/domain/models"
)

// Classification labels that warrant a coaching action.
var actionPriority = map[string]string{
	"overload":          "high",
	"high":              "high",
	"excessive":         "high",
	"caution":           "medium",
	"moderate":          "medium",
	"accumulating":      "medium",
	"elevated":          "medium",
	"low":               "medium",
	"threshold":         "medium",
	"intensity_focused": "medium",
}

var forecastAdvice = map[string]models.CoachingAction{
	models.ProjectedRecovery: {
		Priority: "low", Metric: "forecast",
		Advice: "projected form is positive; a quality block or race effort fits the horizon",
	},
	models.ProjectedProductive: {
		Priority: "low", Metric: "forecast",
		Advice: "projected load keeps form in the productive band; continue as planned",
	},
	models.ProjectedOverreaching: {
		Priority: "high", Metric: "forecast",
		Advice: "projected form drops into overreaching; cut planned load or insert rest days",
	},
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// BuildActions turns classification implications, the recovery flag and
// the forecast into a prioritized action list. Always non-nil.
func BuildActions(metrics models.ReportMetrics, forecast *models.ForecastProjection) []models.CoachingAction {
	actions := make([]models.CoachingAction, 0, 4)

	for _, m := range metrics.Derived {
		if !m.Defined || m.Implication == "" {
			continue
		}
		prio, ok := actionPriority[m.Classification]
		if !ok {
			continue
		}
		actions = append(actions, models.CoachingAction{Priority: prio, Metric: m.Name, Advice: m.Implication})
	}

	if metrics.Correlation.Defined && metrics.Correlation.RecoveryFlag == "poor" {
		actions = append(actions, models.CoachingAction{
			Priority: "medium",
			Metric:   "hrv_load_correlation",
			Advice:   "HRV is not rebounding after load; protect sleep and add easy days",
		})
	}
	if forecast != nil {
		if a, ok := forecastAdvice[forecast.ProjectedPhase]; ok {
			actions = append(actions, a)
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return priorityRank[actions[i].Priority] < priorityRank[actions[j].Priority]
	})
	return actions
}
