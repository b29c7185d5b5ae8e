package events

// #region event-type

// EventType is the closed vocabulary of the behavioral log's event column.
type EventType string

const (
	// EventMRITrigger marks a scanner trigger; the first one with info
	// "Received" anchors run-relative time zero.
	EventMRITrigger EventType = "MRI_Trigger"
	// EventNewState marks a task-state transition; info carries the state label.
	EventNewState EventType = "NewState"
	// EventFixation marks the eye entering ("In") or leaving ("Out") the
	// fixation window.
	EventFixation EventType = "Fixation"
	// EventTargetLoc announces the target location for the upcoming trial.
	EventTargetLoc EventType = "TargetLoc"
	// EventResponseGiven carries the scored outcome of the trial's response.
	EventResponseGiven EventType = "ResponseGiven"
	// EventResponseInitiate marks the hand lifting off the response bar.
	EventResponseInitiate EventType = "Response_Initiate"
	// EventResponseReward and EventTaskReward are the automatic reward
	// encodings; info carries the reward duration in seconds.
	EventResponseReward EventType = "ResponseReward"
	EventTaskReward     EventType = "TaskReward"
	// EventManualReward is the current manual-reward encoding; info carries
	// the reward duration in seconds.
	EventManualReward EventType = "ManualReward"
	// EventReward with info "Manual" is the legacy manual-reward encoding.
	// Mutually exclusive with EventManualReward within one log.
	EventReward EventType = "Reward"
	// EventUnrecognized is the catch-all for event strings outside the
	// vocabulary. It matches no dispatch branch.
	EventUnrecognized EventType = "unrecognized"
)

// ParseEventType maps an event-column string to the closed vocabulary.
func ParseEventType(s string) EventType {
	switch EventType(s) {
	case EventMRITrigger, EventNewState, EventFixation, EventTargetLoc,
		EventResponseGiven, EventResponseInitiate, EventResponseReward,
		EventTaskReward, EventManualReward, EventReward:
		return EventType(s)
	default:
		return EventUnrecognized
	}
}

// #endregion event-type

// #region state-labels

// StateLabel is a task-state label carried by a NewState event. Labels
// outside the dispatch set below are recorded but trigger no transition.
type StateLabel string

const (
	StateTrialEnd       StateLabel = "TRIAL_END"
	StatePreSwitch      StateLabel = "PRESWITCH"
	StateSwitched       StateLabel = "SWITCHED"
	StatePostSwitch     StateLabel = "POSTSWITCH"
	StateFixationPeriod StateLabel = "FIXATION_PERIOD"
	StatePostFixation   StateLabel = "POSTFIXATION"
)

// #endregion state-labels

// #region info-vocabularies

// Fixation event info values.
const (
	FixationIn  = "In"
	FixationOut = "Out"
)

// TriggerReceived is the MRI trigger info value that anchors time zero.
const TriggerReceived = "Received"

// RewardManual is the legacy manual-reward info value on an EventReward row.
const RewardManual = "Manual"

// Target locations for the curve-tracing task.
const (
	TargetUL     = "UL"
	TargetDL     = "DL"
	TargetUR     = "UR"
	TargetDR     = "DR"
	TargetCenter = "Center"
)

// KnownTarget reports whether loc is in the target-location vocabulary.
func KnownTarget(loc string) bool {
	switch loc {
	case TargetUL, TargetDL, TargetUR, TargetDR, TargetCenter:
		return true
	}
	return false
}

// Response outcomes carried by a ResponseGiven event.
const (
	ResponseCorrect       = "CORRECT"
	ResponseIncorrect     = "INCORRECT"
	ResponseFixationBreak = "FixationBreak"
)

// Hands carried by a Response_Initiate event.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// #endregion info-vocabularies

// #region task-names

// Task names observed in the event logs.
const (
	TaskCurveTracing = "Curve tracing"
	TaskControlCT    = "Control CT"
	TaskCatchCT      = "Catch CT"
	TaskKeepBusy     = "Keep busy"
	TaskFixation     = "Fixation"
)

// #endregion task-names

// #region raw-event

// RawEvent is one ordered row of a run's behavioral event log. Row order is
// the only structural guarantee the log provides.
type RawEvent struct {
	Task  string
	Event EventType
	// RawEventName preserves the event-column text for diagnostics when
	// Event is EventUnrecognized.
	RawEventName string
	Info         string
	TimeS        float64
	RecordTimeS  float64
}

// #endregion raw-event
