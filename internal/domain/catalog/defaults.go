package catalog

// Score names.
const (
	PhysicalOffensiveScore = "Physical Offensive Score"
	PhysicalDefensiveScore = "Physical Defensive Score"
	OffensiveScore         = "Offensive Score"
	DefensiveScore         = "Defensive Score"
	GoalThreatScore        = "Goal Threat Score"
)

// PhysicalMetrics are the tracking columns of the export.
var PhysicalMetrics = []string{
	"Distance", "M/min", "HSR Distance", "HSR Count", "Sprint Distance", "Sprint Count",
	"HI Distance", "HI Count", "Medium Acceleration Count", "High Acceleration Count",
	"Medium Deceleration Count", "High Deceleration Count", "Distance OTIP", "M/min OTIP",
	"HSR Distance OTIP", "HSR Count OTIP", "Sprint Distance OTIP", "Sprint Count OTIP",
	"HI Distance OTIP", "HI Count OTIP", "Medium Acceleration Count OTIP",
	"High Acceleration Count OTIP", "Medium Deceleration Count OTIP", "High Deceleration Count OTIP",
	"PSV-99",
}

var physicalOffensive = []string{
	"Distance", "M/min", "HSR Distance", "HSR Count", "Sprint Distance", "Sprint Count",
	"HI Distance", "HI Count", "Medium Acceleration Count", "High Acceleration Count",
	"Medium Deceleration Count", "High Deceleration Count", "PSV-99",
}

// Out-of-possession counterparts of the offensive physical set.
var physicalDefensive = []string{
	"Distance OTIP", "M/min OTIP", "HSR Distance OTIP", "HSR Count OTIP", "Sprint Distance OTIP",
	"Sprint Count OTIP", "HI Distance OTIP", "HI Count OTIP", "Medium Acceleration Count OTIP",
	"High Acceleration Count OTIP", "Medium Deceleration Count OTIP", "High Deceleration Count OTIP",
}

var offensive = []string{
	"PsAtt", "PsCmp", "Pass%", "PsIntoA3rd", "ProgPass", "ThrghBalls", "Touches", "PsRec",
	"ProgCarry", "TakeOn", "Success1v1",
}

var defensive = []string{
	"TcklMade%", "TcklAtt", "Tckl", "AdjTckl", "TcklA3", "Blocks", "Int", "AdjInt", "Clrnce",
}

var goalThreat = []MetricRef{
	{Key: "Goal", Weight: 2},
	{Key: "ExpG", Weight: 2},
	{Key: "xGOT", Weight: 1.5},
	{Key: "Shot", Weight: 1},
	{Key: "SOG", Weight: 1},
	{Key: "OnTarget%", Weight: 1},
	{Key: "TouchOpBox", Weight: 1},
	{Key: "Take on into the Box", Weight: 1},
}

// DisplayMetrics lists the raw and derived columns offered as Top-10 tables.
var DisplayMetrics = append(append([]string{"PSV-99"}, PhysicalMetrics...),
	"Take on into the Box", "TouchOpBox", "KeyPass", "2ndAst", "xA +/-", "MinPerChnc",
	"PsAtt", "PsCmp", "PsIntoA3rd", "ProgPass", "ThrghBalls", "Touches", "PsRec",
	"ProgCarry", "TakeOn", "Success1v1", "TcklAtt", "Tckl", "AdjTckl", "TcklA3",
	"Blocks", "Int", "AdjInt", "Clrnce", "Goal", "Shot/Goal", "MinPerGoal", "GoalExPn",
	"ExpG", "xGOT", "ExpGExPn", "xG +/-", "Shot", "SOG", "Shot conversion", "Ast", "xA",
	"OnTarget%", "TcklMade%", "Pass%",
)

func uniform(keys []string) []MetricRef {
	out := make([]MetricRef, len(keys))
	for i, k := range keys {
		out[i] = MetricRef{Key: k, Weight: DefaultWeight}
	}
	return out
}

// DefaultScores returns the built-in score definitions without Overall Score.
func DefaultScores() []ScoreDef {
	return []ScoreDef{
		{Name: PhysicalOffensiveScore, Metrics: uniform(physicalOffensive)},
		{Name: PhysicalDefensiveScore, Metrics: uniform(physicalDefensive)},
		{Name: OffensiveScore, Metrics: uniform(offensive)},
		{Name: DefensiveScore, Metrics: uniform(defensive)},
		{Name: GoalThreatScore, Metrics: append([]MetricRef(nil), goalThreat...)},
	}
}

// Default builds the standard catalog. Numeric columns cover every score
// input and display metric, plus the ratio inputs.
func Default(opts ...Option) (*Catalog, error) {
	scores := DefaultScores()
	numeric := make([]string, 0, len(DisplayMetrics)+8)
	for _, s := range scores {
		numeric = append(numeric, s.Keys()...)
	}
	numeric = append(numeric, DisplayMetrics...)
	return New(scores, DisplayMetrics, numeric, opts...)
}
