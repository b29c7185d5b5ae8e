package segment

// #region event

// Event is one modeled occurrence within a condition: onset and duration in
// seconds relative to run start, plus a dimensionless amplitude. Values are
// fixed at construction.
type Event struct {
	OnsetS    float64
	DurS      float64
	Amplitude float64
}

// span builds an Event covering [start, stop).
func span(startS, stopS float64) Event {
	return Event{OnsetS: startS, DurS: stopS - startS, Amplitude: 1}
}

// instant builds a zero-duration Event at t with the given amplitude.
func instant(t, amplitude float64) Event {
	return Event{OnsetS: t, Amplitude: amplitude}
}

// #endregion event

// #region conditions

// Condition names a regressor category in the downstream design matrix.
type Condition string

const (
	CondAttendULCor     Condition = "AttendUL_COR"
	CondAttendDLCor     Condition = "AttendDL_COR"
	CondAttendURCor     Condition = "AttendUR_COR"
	CondAttendDRCor     Condition = "AttendDR_COR"
	CondAttendCenterCor Condition = "AttendCenter_COR"
	CondCurveFalseHit   Condition = "CurveFalseHit"
	CondCurveNoResponse Condition = "CurveNoResponse"
	CondCurveFixBreak   Condition = "CurveFixationBreak"
	// CondCurveNotCor aggregates false hits, no-responses and fixation breaks.
	CondCurveNotCor Condition = "CurveNotCOR"
	// CondPreSwitchCurves covers every pre-switch display with curves and targets.
	CondPreSwitchCurves Condition = "PreSwitchCurves"
	CondResponseCues    Condition = "ResponseCues"
	CondHandLeft        Condition = "HandLeft"
	CondHandRight       Condition = "HandRight"
	CondReward          Condition = "Reward"
	CondFixationTask    Condition = "FixationTask"
	CondFixating        Condition = "Fixating"
)

// Conditions returns the full condition vocabulary in its canonical order.
// Every run's output carries exactly these buckets.
func Conditions() []Condition {
	return []Condition{
		CondAttendULCor, CondAttendDLCor, CondAttendURCor, CondAttendDRCor,
		CondAttendCenterCor,
		CondCurveFalseHit, CondCurveNoResponse, CondCurveFixBreak,
		CondCurveNotCor,
		CondPreSwitchCurves, CondResponseCues,
		CondHandLeft, CondHandRight,
		CondReward, CondFixationTask, CondFixating,
	}
}

// #endregion conditions

// #region config

// Config holds the segmenter's policy constants. The historical pipeline
// hard-coded both values; their derivation is undocumented, so they are kept
// configurable with the historical numbers as defaults.
type Config struct {
	// PostCorrectMarginS bounds end-of-useful-data at the last correct trial
	// plus this margin. The last-correct sentinel before any correct trial is
	// -PostCorrectMarginS, so a run with no correct trial ends at 0 s.
	PostCorrectMarginS float64
	// LegacyManualRewardAmp is the amplitude assigned to the legacy
	// ("Reward","Manual") encoding, which carries no duration payload.
	LegacyManualRewardAmp float64
}

// DefaultConfig returns the historical policy constants.
func DefaultConfig() Config {
	return Config{
		PostCorrectMarginS:    15,
		LegacyManualRewardAmp: 0.04,
	}
}

// #endregion config

// #region result

// Result is the complete output of segmenting one run's event log.
type Result struct {
	// Events maps every condition in the vocabulary to its ordered event
	// list; buckets with no occurrences are present and empty.
	Events map[Condition][]Event
	// EndTimeS is the end of useful data in run-relative seconds.
	EndTimeS float64
	// UsableVols counts acquired volumes with behavioral relevance,
	// clamped to the externally supplied total.
	UsableVols int
}

// #endregion result
