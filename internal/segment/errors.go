package segment

// #region imports
import (
	"errors"
	"fmt"
)

// #endregion imports

// #region sentinels

// ErrMissingTrigger reports a log with no received MRI trigger row; without
// it there is no time anchor and the run cannot be modeled.
var ErrMissingTrigger = errors.New("no received MRI trigger in event log")

// ErrConflictingReward reports a log carrying both the ManualReward and the
// legacy ("Reward","Manual") encoding. The encodings are mutually exclusive;
// seeing both signals a corrupted or double-recorded log.
var ErrConflictingReward = errors.New("log mixes ManualReward and (Reward,Manual) encodings")

// #endregion sentinels

// #region unrecognized-value

// UnrecognizedValueError reports a payload value outside the documented
// closed vocabulary for its field. Row is the zero-based index into the
// input sequence.
type UnrecognizedValueError struct {
	Row   int
	Field string
	Value string
}

func (e *UnrecognizedValueError) Error() string {
	return fmt.Sprintf("row %d: unrecognized %s %q", e.Row, e.Field, e.Value)
}

// #endregion unrecognized-value

// #region sequence-error

// SequenceError reports a state transition arriving without the prior state
// it depends on (e.g. PRESWITCH before any TargetLoc).
type SequenceError struct {
	Row    int
	State  string
	Reason string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("row %d: %s transition %s", e.Row, e.State, e.Reason)
}

// #endregion sequence-error
