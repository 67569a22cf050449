package usecase

import (
	"fmt"
	"sort"
	"strings"

	"LoadLedger/internal/domain/models"
	"LoadLedger/pkg/util"
)

// RenderMarkdown projects a report envelope into a markdown document.
// The envelope stays the artifact of record; this view adds no data of
// its own and renders the sections in envelope order.
func RenderMarkdown(env models.ReportEnvelope) string {
	var b strings.Builder

	writeHeader(&b, env.Header)
	writeSummary(&b, env.Summary)
	writeMetrics(&b, env.Metrics)
	writeZones(&b, env.Zones)
	writePhases(&b, env.Phases)
	writeActions(&b, env.Actions)
	if env.Wellness != nil && env.Wellness.Defined {
		writeWellness(&b, *env.Wellness)
	}
	if env.Cycling != nil {
		writeCycling(&b, *env.Cycling)
	}
	if len(env.Outliers) > 0 {
		writeOutliers(&b, env.Outliers)
	}
	if env.Forecast != nil && len(env.Forecast.Daily) > 0 {
		writeForecast(&b, *env.Forecast)
	}
	if len(env.Events) > 0 {
		writeEvents(&b, env.Events)
	}
	writeFooter(&b, env.Footer, env.Header)

	return b.String()
}

func writeHeader(b *strings.Builder, h models.ReportHeader) {
	b.WriteString("# " + h.Title + "\n\n")
	b.WriteString(fmt.Sprintf("**Athlete:** %s (%s)\n", h.Athlete, h.AthleteID))
	b.WriteString("**Period:** " + h.Period + "\n")
	b.WriteString("**Timezone:** " + h.Timezone + "\n")
	b.WriteString("**Generated:** " + h.GeneratedAt.Format("2006-01-02 15:04:05 MST") + "\n\n")
}

func writeSummary(b *strings.Builder, s models.ReportSummary) {
	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("**Total hours:** %.2f\n", s.TotalHours))
	b.WriteString(fmt.Sprintf("**Total load:** %.0f\n", s.TotalLoad))
	b.WriteString(fmt.Sprintf("**Distance:** %.1f km\n", s.DistanceKm))
	b.WriteString(fmt.Sprintf("**Sessions:** %d\n\n", s.EventCount))
}

func writeMetrics(b *strings.Builder, m models.ReportMetrics) {
	b.WriteString("## Metrics\n\n")
	b.WriteString("| Metric | Value | Classification | Interpretation |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, d := range m.Derived {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			d.Name, metricValue(d), orDash(d.Classification), orDash(d.Interpretation)))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("**Load state:** CTL %.1f, ATL %.1f, TSB %.1f (weekly %.0f, source %s)\n",
		m.Load.CTL, m.Load.ATL, m.Load.TSB, m.Load.WeeklyLoad, m.Load.Source))
	b.WriteString(fmt.Sprintf("**Adaptation:** %s (stress tolerance %.2f, recovery index %.2f)\n",
		m.Adaptation.FormState, m.Adaptation.StressTolerance, m.Adaptation.RecoveryIndex))
	if m.Trend.Defined {
		b.WriteString(fmt.Sprintf("**Fatigue trend:** %s %+.1f%% (%s)\n",
			m.Trend.Direction, m.Trend.FatigueTrendPct, m.Trend.Method))
	}
	if m.Correlation.Defined {
		b.WriteString(fmt.Sprintf("**HRV/load correlation:** r=%.2f over %d days (%s)\n",
			m.Correlation.HRVLoadR, m.Correlation.SampleDays, m.Correlation.RecoveryFlag))
	}
	b.WriteString("\n")
}

func writeZones(b *strings.Builder, zones []models.ZoneDistribution) {
	if len(zones) == 0 {
		return
	}
	b.WriteString("## Intensity Distribution\n\n")
	for _, z := range zones {
		parts := make([]string, 0, len(z.Percent))
		for i, p := range z.Percent {
			parts = append(parts, fmt.Sprintf("Z%d %.1f%%", i+1, p))
		}
		b.WriteString(fmt.Sprintf("**%s:** %s (%s)\n", z.Modality, strings.Join(parts, ", "), z.Source))
	}
	b.WriteString("\n")
}

func writePhases(b *strings.Builder, phases []models.Phase) {
	b.WriteString("## Training Phases\n\n")
	if len(phases) == 0 {
		b.WriteString("No complete training weeks in the window.\n\n")
		return
	}
	b.WriteString("| Phase | From | To | Weeks | Load | End CTL | End TSB |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, p := range phases {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.0f | %.1f | %.1f |\n",
			p.Label, util.DateKey(p.StartDate), util.DateKey(p.EndDate),
			p.Weeks, p.TotalLoad, p.EndCTL, p.EndTSB))
	}
	b.WriteString("\n")
}

func writeActions(b *strings.Builder, actions []models.CoachingAction) {
	if len(actions) == 0 {
		return
	}
	b.WriteString("## Coaching Actions\n\n")
	for _, a := range actions {
		b.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", a.Priority, a.Metric, a.Advice))
	}
	b.WriteString("\n")
}

func writeWellness(b *strings.Builder, w models.WellnessSummary) {
	b.WriteString("## Wellness\n\n")
	b.WriteString(fmt.Sprintf("**Fitness:** CTL %.1f, ATL %.1f, TSB %.1f\n", w.CTL, w.ATL, w.TSB))
	b.WriteString(fmt.Sprintf("**Resting HR (7d):** %.1f\n", w.RestingHR7))
	b.WriteString(fmt.Sprintf("**HRV trend:** %+.1f\n", w.HRVTrend))
	b.WriteString(fmt.Sprintf("**Fatigue / stress / readiness:** %.1f / %.1f / %.1f\n",
		w.MeanFatigue, w.MeanStress, w.MeanReadiness))
	b.WriteString(fmt.Sprintf("**Rest days:** %d\n\n", w.RestDays))
}

func writeCycling(b *strings.Builder, c models.CyclingSummary) {
	b.WriteString("## Cycling\n\n")
	b.WriteString(fmt.Sprintf("**Rides:** %d\n", c.Rides))
	if c.AvgIF > 0 {
		b.WriteString(fmt.Sprintf("**Average IF:** %.2f\n", c.AvgIF))
	}
	if c.AvgHR > 0 {
		b.WriteString(fmt.Sprintf("**Average HR:** %d\n", c.AvgHR))
	}
	if c.HighAerobicRides > 0 {
		b.WriteString(fmt.Sprintf("**High-aerobic rides:** %d (VO2max est. %.1f)\n",
			c.HighAerobicRides, c.VO2Max))
	}
	b.WriteString("\n")
}

func writeOutliers(b *strings.Builder, outliers []models.LoadOutlier) {
	b.WriteString("## Load Outliers\n\n")
	for _, o := range outliers {
		b.WriteString(fmt.Sprintf("- %s: load %.0f (%s)\n", o.Date, o.Load, o.Direction))
	}
	b.WriteString("\n")
}

func writeForecast(b *strings.Builder, f models.ForecastProjection) {
	b.WriteString("## Forecast\n\n")
	last := f.Daily[len(f.Daily)-1]
	b.WriteString(fmt.Sprintf("**Horizon:** %d days, load %s, projected phase %s\n",
		f.HorizonDays, f.LoadTrend, f.ProjectedPhase))
	b.WriteString(fmt.Sprintf("**Projected %s:** CTL %.1f, ATL %.1f, TSB %.1f\n",
		util.DateKey(last.Date), last.CTL, last.ATL, last.TSB))
	b.WriteString(fmt.Sprintf("**Planned events:** %d (seed %s)\n\n", f.PlannedCount, f.SeedSource))
}

func writeEvents(b *strings.Builder, events []models.EventSummary) {
	b.WriteString("## Recent Events\n\n")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("- %s %s \"%s\": %.1fh, load %.0f, %.1f km\n",
			util.DateKey(e.Start), e.SportType, e.Name, e.Hours, e.Load, e.DistanceKm))
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, f models.ReportFooter, h models.ReportHeader) {
	b.WriteString("---\n\n")
	validated := "no"
	if f.Validated {
		validated = "yes"
	}
	b.WriteString(fmt.Sprintf("**Audit precision:** %s | **Data source:** %s | **Validated:** %s\n",
		f.AuditPrecision, f.DataSource, validated))
	if len(f.ChosenSources) > 0 {
		parts := make([]string, 0, len(f.ChosenSources))
		for _, ds := range sortedKeys(f.ChosenSources) {
			parts = append(parts, ds+"="+f.ChosenSources[ds])
		}
		b.WriteString("**Sources:** " + strings.Join(parts, ", ") + "\n")
	}
	for _, w := range f.Warnings {
		b.WriteString("- warning: " + w + "\n")
	}
	b.WriteString("\n_" + h.ReportType + " report generated " + util.DateKey(h.GeneratedAt) + "_\n")
}

func metricValue(d models.DerivedMetric) string {
	if !d.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", d.Value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
