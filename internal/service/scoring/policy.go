package scoring

// Signal names.
const (
	SignalEngagementVelocity = "engagement_velocity"
	SignalActivityRecency    = "activity_recency"
	SignalPipelineProgress   = "pipeline_progress"
	SignalScoreTrajectory    = "score_trajectory"
	SignalDataCompleteness   = "data_completeness"
	SignalTaskCompletion     = "task_completion"
)

// Signal weights. They sum to 100 so the score is a plain weighted mean.
const (
	WeightEngagementVelocity = 20
	WeightActivityRecency    = 18
	WeightPipelineProgress   = 25
	WeightScoreTrajectory    = 15
	WeightDataCompleteness   = 12
	WeightTaskCompletion     = 10
)

// TotalWeight is the sum of all signal weights.
const TotalWeight = WeightEngagementVelocity + WeightActivityRecency + WeightPipelineProgress +
	WeightScoreTrajectory + WeightDataCompleteness + WeightTaskCompletion

// Baseline used when a tenant has no converted contacts.
const (
	DefaultAvgScoreAtClose = 50.0
	DefaultAvgDaysToClose  = 30.0
	DefaultAvgInteractions = 5.0
	DefaultAvgTravelers    = 2.0
	DefaultAvgBudget       = 0.0
	TopListSize            = 5
)

// engagement_velocity
const (
	MinWonRate              = 0.01
	MaxEngagementRatio      = 2.0
	EngagementPositiveRatio = 0.8
	EngagementNeutralRatio  = 0.4
)

// activity_recency: days since the last activity → value.
var recencyTiers = []struct {
	maxDays float64
	value   int
}{
	{1, 100},
	{3, 80},
	{7, 60},
	{14, 30},
}

const (
	RecencyFloorValue    = 10
	RecencyPositiveValue = 60
	RecencyNeutralValue  = 30
)

// pipeline_progress
const (
	ProgressPositiveValue = 55
	ProgressNeutralValue  = 33
)

// score_trajectory
const (
	TrajectoryPositiveRatio = 0.7
	TrajectoryNeutralRatio  = 0.4
)

// data_completeness
const (
	CompletenessFieldCount    = 7
	CompletenessPositiveValue = 70
	CompletenessNeutralValue  = 40
)

// task_completion
const (
	PointsPerCompletedTask = 20
	TasksPositiveValue     = 60
	TasksNeutralValue      = 20
)

// Probability, risk and confidence.
const (
	ProbabilitySkew       = 1.05
	MaxProbability        = 99
	LowRiskProbability    = 60
	MediumRiskProbability = 35

	BaseConfidence           = 50
	ConfidencePerInteraction = 5
	MaxInteractionConfidence = 20
	HistoryConfidenceBonus   = 15
	MaxTenureConfidence      = 15
	MaxConfidence            = 95
)

// Days-to-close multipliers by stage depth.
const (
	LateStageIndex    = 7
	MidLateStageIndex = 5
	MidStageIndex     = 3
	LateStageFraction = 0.2
	MidLateFraction   = 0.5
	MidStageFraction  = 0.8
	MinLateStageDays  = 2
)

// Recommendation triggers.
const (
	StaleActivityDays     = 7
	IncompleteDataValue   = 60
	StalledStageMaxIndex  = 3
	MismatchScore         = 70
	MismatchMaxStageIndex = 2
	HotLeadMaxSilenceDays = 2
)

// Batch ranking.
const (
	DefaultTopLimit   = 10
	MaxTopLimit       = 100
	CandidatePoolSize = 500
)
