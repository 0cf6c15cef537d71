package scoring

import (
	"fmt"
	"math"

	"github.com/ignite/travel-crm/internal/domain"
)

// AffirmativeRecommendation is returned when no rule fires.
const AffirmativeRecommendation = "Lead is on track: keep the current follow-up cadence."

type recommendationRule func(in SignalInput, signals map[string]domain.Signal) (string, bool)

// rules run in this order; the output keeps it.
var recommendationRules = []recommendationRule{
	staleActivity,
	incompleteData,
	lowEngagement,
	stalledStage,
	scoreStageMismatch,
	unattendedHotLead,
	noCompletedTasks,
}

// Recommend returns the ordered follow-up suggestions for a contact.
func Recommend(in SignalInput, signals []domain.Signal) []string {
	byName := make(map[string]domain.Signal, len(signals))
	for _, s := range signals {
		byName[s.Name] = s
	}

	var out []string
	for _, rule := range recommendationRules {
		if msg, ok := rule(in, byName); ok {
			out = append(out, msg)
		}
	}
	if len(out) == 0 {
		return []string{AffirmativeRecommendation}
	}
	return out
}

func staleActivity(in SignalInput, _ map[string]domain.Signal) (string, bool) {
	days := in.DaysSinceActivity()
	if days <= StaleActivityDays {
		return "", false
	}
	return fmt.Sprintf("No activity for %d days: schedule a follow-up call or email.", int(math.Floor(days))), true
}

func incompleteData(_ SignalInput, s map[string]domain.Signal) (string, bool) {
	if s[SignalDataCompleteness].Value >= IncompleteDataValue {
		return "", false
	}
	return "Profile is incomplete: capture travel dates, group size and budget.", true
}

func lowEngagement(_ SignalInput, s map[string]domain.Signal) (string, bool) {
	if s[SignalEngagementVelocity].Direction != domain.SignalNegative {
		return "", false
	}
	return "Engagement is below converting leads: send a tailored destination offer.", true
}

func stalledStage(in SignalInput, _ map[string]domain.Signal) (string, bool) {
	age := in.DaysSinceCreated()
	if in.Activity.Contact.Stage.Index() > StalledStageMaxIndex || age <= in.Pattern.AvgDaysToClose/2 {
		return "", false
	}
	return fmt.Sprintf("Stuck in %s for %d days: qualify the lead or send a quote.",
		in.Activity.Contact.Stage, int(math.Floor(age))), true
}

func scoreStageMismatch(in SignalInput, _ map[string]domain.Signal) (string, bool) {
	c := in.Activity.Contact
	if c.LeadScore < MismatchScore || c.Stage.Index() > MismatchMaxStageIndex {
		return "", false
	}
	return "High lead score at an early stage: fast-track to qualification.", true
}

func unattendedHotLead(in SignalInput, _ map[string]domain.Signal) (string, bool) {
	if !in.Activity.Contact.IsHotLead || in.DaysSinceActivity() <= HotLeadMaxSilenceDays {
		return "", false
	}
	return "Hot lead without contact in over two days: reach out today.", true
}

func noCompletedTasks(in SignalInput, _ map[string]domain.Signal) (string, bool) {
	if in.Activity.CompletedTasks > 0 {
		return "", false
	}
	return "No completed tasks: create a follow-up task for this lead.", true
}
