package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/ignite/travel-crm/internal/domain"
)

// SignalInput is everything a signal may look at for one contact.
type SignalInput struct {
	Activity domain.ContactActivity
	Pattern  domain.ConversionPattern
	Now      time.Time
}

// DaysSinceCreated is the contact's age in fractional days, never negative.
func (in SignalInput) DaysSinceCreated() float64 {
	return daysBetween(in.Activity.Contact.CreatedAt, in.Now)
}

// DaysSinceActivity is the time since the last interaction (or creation).
func (in SignalInput) DaysSinceActivity() float64 {
	return daysBetween(in.Activity.LastActivity(), in.Now)
}

func daysBetween(from, to time.Time) float64 {
	d := to.Sub(from).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// SignalFunc computes one signal.
type SignalFunc func(SignalInput) domain.Signal

// Signals is the fixed signal set in report order.
var Signals = []SignalFunc{
	EngagementVelocity,
	ActivityRecency,
	PipelineProgress,
	ScoreTrajectory,
	DataCompleteness,
	TaskCompletion,
}

// ComputeSignals evaluates every signal for in.
func ComputeSignals(in SignalInput) []domain.Signal {
	out := make([]domain.Signal, 0, len(Signals))
	for _, fn := range Signals {
		out = append(out, fn(in))
	}
	return out
}

// EngagementVelocity compares the contact's interaction rate with the rate
// converted contacts showed on their way to close.
func EngagementVelocity(in SignalInput) domain.Signal {
	rate := float64(in.Activity.InteractionCount) / math.Max(in.DaysSinceCreated(), 1)
	wonRate := in.Pattern.AvgInteractions / math.Max(in.Pattern.AvgDaysToClose, 1)
	ratio := math.Min(rate/math.Max(wonRate, MinWonRate), MaxEngagementRatio)

	return domain.Signal{
		Name:        SignalEngagementVelocity,
		Value:       clamp(round(ratio * 50)),
		Weight:      WeightEngagementVelocity,
		Direction:   direction(ratio, EngagementPositiveRatio, EngagementNeutralRatio),
		Description: fmt.Sprintf("%.2f interactions/day vs %.2f for converted leads", rate, wonRate),
	}
}

// ActivityRecency scores how recently the contact was touched.
func ActivityRecency(in SignalInput) domain.Signal {
	days := in.DaysSinceActivity()
	value := RecencyFloorValue
	for _, tier := range recencyTiers {
		if days <= tier.maxDays {
			value = tier.value
			break
		}
	}
	return domain.Signal{
		Name:        SignalActivityRecency,
		Value:       value,
		Weight:      WeightActivityRecency,
		Direction:   direction(float64(value), RecencyPositiveValue, RecencyNeutralValue),
		Description: fmt.Sprintf("last activity %d days ago", int(math.Floor(days))),
	}
}

// PipelineProgress is the contact's position in the ordered pipeline.
func PipelineProgress(in SignalInput) domain.Signal {
	stage := in.Activity.Contact.Stage
	value := clamp(round(float64(stage.Index()) / domain.StageCount * 100))
	return domain.Signal{
		Name:        SignalPipelineProgress,
		Value:       value,
		Weight:      WeightPipelineProgress,
		Direction:   direction(float64(value), ProgressPositiveValue, ProgressNeutralValue),
		Description: fmt.Sprintf("stage %s (%d of %d)", stage, stage.Index(), domain.StageCount),
	}
}

// ScoreTrajectory compares the current lead score with the average score
// converted contacts had at close.
func ScoreTrajectory(in SignalInput) domain.Signal {
	score := domain.ClampScore(in.Activity.Contact.LeadScore)
	ratio := float64(score) / math.Max(in.Pattern.AvgScoreAtClose, 1)
	return domain.Signal{
		Name:        SignalScoreTrajectory,
		Value:       clamp(round(ratio * 50)),
		Weight:      WeightScoreTrajectory,
		Direction:   direction(ratio, TrajectoryPositiveRatio, TrajectoryNeutralRatio),
		Description: fmt.Sprintf("lead score %d vs %.0f average at close", score, in.Pattern.AvgScoreAtClose),
	}
}

// DataCompleteness counts the optional profile fields that are filled in.
func DataCompleteness(in SignalInput) domain.Signal {
	c := in.Activity.Contact
	present := 0
	for _, ok := range []bool{
		c.Email != "",
		c.Phone != "",
		c.InterestedDestination != "",
		c.TravelStartDate != nil,
		c.NumTravelers != nil && *c.NumTravelers > 0,
		c.BudgetMax != nil && *c.BudgetMax > 0,
		c.TravelType != "",
	} {
		if ok {
			present++
		}
	}
	value := clamp(round(float64(present) / CompletenessFieldCount * 100))
	return domain.Signal{
		Name:        SignalDataCompleteness,
		Value:       value,
		Weight:      WeightDataCompleteness,
		Direction:   direction(float64(value), CompletenessPositiveValue, CompletenessNeutralValue),
		Description: fmt.Sprintf("%d of %d profile fields present", present, CompletenessFieldCount),
	}
}

// TaskCompletion rewards completed follow-up tasks.
func TaskCompletion(in SignalInput) domain.Signal {
	n := in.Activity.CompletedTasks
	value := clamp(n * PointsPerCompletedTask)
	return domain.Signal{
		Name:        SignalTaskCompletion,
		Value:       value,
		Weight:      WeightTaskCompletion,
		Direction:   direction(float64(value), TasksPositiveValue, TasksNeutralValue),
		Description: fmt.Sprintf("%d completed tasks", n),
	}
}

func direction(v, positive, neutral float64) domain.SignalDirection {
	switch {
	case v >= positive:
		return domain.SignalPositive
	case v >= neutral:
		return domain.SignalNeutral
	}
	return domain.SignalNegative
}

func round(f float64) int { return int(math.Round(f)) }

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
