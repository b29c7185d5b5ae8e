// Package segment turns one run's raw behavioral event log into per-condition
// event lists suitable for building a design matrix, together with the run's
// end-of-useful-data time and usable-volume count.
package segment

// #region imports
import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/visionlab/curvetrace/internal/events"
)

// #endregion imports

// #region segmenter

// Segmenter segments behavioral event logs under a fixed policy config.
// The zero value is not usable; construct with New.
type Segmenter struct {
	cfg Config
}

// New returns a Segmenter with the given policy config.
func New(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Process segments rows under the historical default config.
func Process(rows []events.RawEvent, trS float64, totalVols int) (Result, error) {
	return New(DefaultConfig()).Process(rows, trS, totalVols)
}

// #endregion segmenter

// #region run-state

// runState is the per-run scratch state of the scan. It is created fresh per
// invocation and discarded once the derived scalars are computed. The
// per-trial fields are cleared only at the TRIAL_END transition.
type runState struct {
	currState events.StateLabel

	// per-trial
	target   string   // active target location, "" until TargetLoc
	stimOnS  *float64 // PRESWITCH stimulus onset
	response string   // first ResponseGiven outcome, latched
	switched bool     // SWITCHED seen this trial
	fixOnS   *float64 // FIXATION_PERIOD onset (fixation task)
	cuesOnS  *float64 // SWITCHED response-window onset

	// cross-trial
	beganFixationS *float64
	lastCorrectS   float64
	sawManual      bool // ManualReward encoding observed
	sawLegacy      bool // legacy ("Reward","Manual") encoding observed
}

// resetTrial clears the per-trial fields. Fixation tracking and the
// last-correct time deliberately survive trial boundaries.
func (st *runState) resetTrial() {
	st.target = ""
	st.stimOnS = nil
	st.response = ""
	st.switched = false
	st.fixOnS = nil
	st.cuesOnS = nil
}

// #endregion run-state

// #region process

// Process runs the single left-to-right scan over one run's ordered event
// rows. trS is the sampling period in seconds per volume, totalVols the
// number of acquired volumes. On any structural violation the run is not
// modelable and no partial output is returned.
func (s *Segmenter) Process(rows []events.RawEvent, trS float64, totalVols int) (Result, error) {
	if trS <= 0 {
		return Result{}, fmt.Errorf("sampling period must be positive, got %g", trS)
	}
	if totalVols < 1 {
		return Result{}, fmt.Errorf("total volume count must be positive, got %d", totalVols)
	}

	rows, err := normalize(rows)
	if err != nil {
		return Result{}, err
	}

	buckets := make(map[Condition][]Event, len(Conditions()))
	for _, c := range Conditions() {
		buckets[c] = []Event{}
	}
	emit := func(c Condition, ev Event) {
		buckets[c] = append(buckets[c], ev)
	}

	st := runState{lastCorrectS: -s.cfg.PostCorrectMarginS}

	for i, ev := range rows {
		if ev.Event == events.EventNewState {
			st.currState = events.StateLabel(ev.Info)
			if st.currState == events.StateSwitched {
				st.switched = true
			}
		}

		if ev.Event == events.EventFixation {
			switch ev.Info {
			case events.FixationOut:
				// A dangling Out with no open interval is ignored.
				if st.beganFixationS != nil {
					emit(CondFixating, span(*st.beganFixationS, ev.TimeS))
					st.beganFixationS = nil
				}
			case events.FixationIn:
				t := ev.TimeS
				st.beganFixationS = &t
			default:
				return Result{}, &UnrecognizedValueError{Row: i, Field: "fixation info", Value: ev.Info}
			}
			continue
		}

		switch {
		case ev.Event == events.EventTargetLoc:
			if !events.KnownTarget(ev.Info) {
				return Result{}, &UnrecognizedValueError{Row: i, Field: "target location", Value: ev.Info}
			}
			st.target = ev.Info

		case newState(ev, events.StateTrialEnd):
			st.resetTrial()

		case newState(ev, events.StatePreSwitch):
			if st.target == "" {
				return Result{}, &SequenceError{Row: i, State: string(events.StatePreSwitch), Reason: "before any target location"}
			}
			t := ev.TimeS
			st.stimOnS = &t

		case ev.Task == events.TaskFixation && newState(ev, events.StateFixationPeriod):
			t := ev.TimeS
			st.fixOnS = &t

		case ev.Task == events.TaskFixation && newState(ev, events.StatePostFixation):
			if st.fixOnS == nil {
				return Result{}, &SequenceError{Row: i, State: string(events.StatePostFixation), Reason: "without a preceding FIXATION_PERIOD"}
			}
			emit(CondFixationTask, span(*st.fixOnS, ev.TimeS))

		case newState(ev, events.StateSwitched):
			t := ev.TimeS
			st.cuesOnS = &t

		case newState(ev, events.StatePostSwitch) && ev.Task != events.TaskFixation:
			if err := s.resolveTrial(&st, ev, i, emit); err != nil {
				return Result{}, err
			}

		case ev.Event == events.EventResponseGiven:
			// Latch, never overwrite: the first outcome of the trial wins.
			if st.response == "" {
				st.response = ev.Info
			}

		case ev.Event == events.EventResponseInitiate:
			switch ev.Info {
			case events.HandLeft:
				emit(CondHandLeft, instant(ev.TimeS, 1))
			case events.HandRight:
				emit(CondHandRight, instant(ev.TimeS, 1))
			default:
				return Result{}, &UnrecognizedValueError{Row: i, Field: "response hand", Value: ev.Info}
			}

		case ev.Event == events.EventResponseReward || ev.Event == events.EventTaskReward:
			amp, err := rewardAmplitude(ev.Info, i)
			if err != nil {
				return Result{}, err
			}
			emit(CondReward, instant(ev.TimeS, amp))

		case ev.Event == events.EventManualReward:
			if st.sawLegacy {
				return Result{}, fmt.Errorf("row %d: %w", i, ErrConflictingReward)
			}
			st.sawManual = true
			amp, err := rewardAmplitude(ev.Info, i)
			if err != nil {
				return Result{}, err
			}
			emit(CondReward, instant(ev.TimeS, amp))

		case ev.Event == events.EventReward && ev.Info == events.RewardManual:
			if st.sawManual {
				return Result{}, fmt.Errorf("row %d: %w", i, ErrConflictingReward)
			}
			st.sawLegacy = true
			emit(CondReward, instant(ev.TimeS, s.cfg.LegacyManualRewardAmp))
		}
	}

	endTimeS := math.Min(st.lastCorrectS+s.cfg.PostCorrectMarginS, rows[len(rows)-1].TimeS)

	usable := int(math.Floor(endTimeS / trS))
	if usable > totalVols {
		usable = totalVols
	}

	return Result{Events: buckets, EndTimeS: endTimeS, UsableVols: usable}, nil
}

// #endregion process

// #region trial-resolution

// resolveTrial is the classification step run once per trial, at a
// POSTSWITCH transition of any non-fixation task.
func (s *Segmenter) resolveTrial(st *runState, ev events.RawEvent, row int, emit func(Condition, Event)) error {
	if !curveTask(ev.Task) {
		return &UnrecognizedValueError{Row: row, Field: "task", Value: ev.Task}
	}
	if st.stimOnS == nil {
		return &SequenceError{Row: row, State: string(events.StatePostSwitch), Reason: "without a preceding PRESWITCH"}
	}

	trial := span(*st.stimOnS, ev.TimeS)
	emit(CondPreSwitchCurves, trial)

	var cond Condition
	switch {
	case st.response == events.ResponseIncorrect:
		cond = CondCurveFalseHit
	case st.response == "":
		if st.switched {
			cond = CondCurveNoResponse
		} else {
			cond = CondCurveFixBreak
		}
	case st.response == events.ResponseFixationBreak:
		cond = CondCurveFixBreak
	case st.response == events.ResponseCorrect:
		cond = attendCondition(st.target)
		st.lastCorrectS = ev.TimeS
	default:
		return &UnrecognizedValueError{Row: row, Field: "response outcome", Value: st.response}
	}

	emit(cond, trial)
	if cond == CondCurveFalseHit || cond == CondCurveNoResponse || cond == CondCurveFixBreak {
		emit(CondCurveNotCor, trial)
	}

	// The response window is modeled regardless of outcome.
	if st.cuesOnS != nil {
		emit(CondResponseCues, span(*st.cuesOnS, ev.TimeS))
	}
	return nil
}

// #endregion trial-resolution

// #region helpers

// normalize anchors all timestamps to the first received MRI trigger. The
// input slice is left untouched.
func normalize(rows []events.RawEvent) ([]events.RawEvent, error) {
	start := math.NaN()
	for _, ev := range rows {
		if ev.Event == events.EventMRITrigger && ev.Info == events.TriggerReceived {
			start = ev.TimeS
			break
		}
	}
	if math.IsNaN(start) {
		return nil, ErrMissingTrigger
	}

	out := make([]events.RawEvent, len(rows))
	for i, ev := range rows {
		ev.TimeS -= start
		ev.RecordTimeS -= start
		out[i] = ev
	}
	return out, nil
}

func newState(ev events.RawEvent, label events.StateLabel) bool {
	return ev.Event == events.EventNewState && events.StateLabel(ev.Info) == label
}

// curveTask reports whether task may reach trial resolution. "Keep busy" is
// matched case-insensitively, all other names exactly; the asymmetry matches
// the historical log-generation vocabulary.
func curveTask(task string) bool {
	return task == events.TaskCurveTracing ||
		task == events.TaskControlCT ||
		task == events.TaskCatchCT ||
		strings.EqualFold(task, events.TaskKeepBusy)
}

func attendCondition(target string) Condition {
	return Condition("Attend" + target + "_COR")
}

// rewardAmplitude parses a reward payload as a duration in seconds.
func rewardAmplitude(info string, row int) (float64, error) {
	amp, err := strconv.ParseFloat(info, 64)
	if err != nil {
		return 0, &UnrecognizedValueError{Row: row, Field: "reward duration", Value: info}
	}
	return amp, nil
}

// #endregion helpers
