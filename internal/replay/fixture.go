package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/visionlab/curvetrace/internal/events"
	"github.com/visionlab/curvetrace/internal/segment"
)

// #endregion imports

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one run's
// event rows with scan parameters and the expected segmentation outcome.
type Fixture struct {
	Description string          `json:"description"`
	TRS         float64         `json:"tr_s"`
	TotalVols   int             `json:"total_vols"`
	Config      *FixtureConfig  `json:"config,omitempty"`
	Rows        []FixtureRow    `json:"rows"`
	Expected    FixtureExpected `json:"expected"`
}

// FixtureRow mirrors events.RawEvent with JSON tags.
type FixtureRow struct {
	Task        string  `json:"task"`
	Event       string  `json:"event"`
	Info        string  `json:"info"`
	TimeS       float64 `json:"time_s"`
	RecordTimeS float64 `json:"record_time_s"`
}

// FixtureConfig mirrors segment.Config with JSON tags. Absent fields keep
// the historical defaults.
type FixtureConfig struct {
	PostCorrectMarginS    *float64 `json:"post_correct_margin_s,omitempty"`
	LegacyManualRewardAmp *float64 `json:"legacy_manual_reward_amp,omitempty"`
}

// FixtureExpected captures the expected outcome. When Error is non-empty the
// run must fail with an error containing that substring. Otherwise the run
// must succeed with the given scalars, the listed condition buckets must
// match exactly, and every unlisted bucket must be empty.
type FixtureExpected struct {
	Error      string                    `json:"error,omitempty"`
	EndTimeS   float64                   `json:"end_time_s"`
	UsableVols int                       `json:"usable_vols"`
	Conditions map[string][]FixtureEvent `json:"conditions,omitempty"`
}

// FixtureEvent mirrors segment.Event with JSON tags.
type FixtureEvent struct {
	OnsetS    float64 `json:"onset_s"`
	DurS      float64 `json:"dur_s"`
	Amplitude float64 `json:"amplitude"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region conversion

// RawRows converts fixture rows to the segmenter's input type.
func (f *Fixture) RawRows() []events.RawEvent {
	rows := make([]events.RawEvent, len(f.Rows))
	for i, r := range f.Rows {
		rows[i] = events.RawEvent{
			Task:         r.Task,
			Event:        events.ParseEventType(r.Event),
			RawEventName: r.Event,
			Info:         r.Info,
			TimeS:        r.TimeS,
			RecordTimeS:  r.RecordTimeS,
		}
	}
	return rows
}

// SegmentConfig resolves the fixture's config overrides against the defaults.
func (f *Fixture) SegmentConfig() segment.Config {
	cfg := segment.DefaultConfig()
	if f.Config == nil {
		return cfg
	}
	if f.Config.PostCorrectMarginS != nil {
		cfg.PostCorrectMarginS = *f.Config.PostCorrectMarginS
	}
	if f.Config.LegacyManualRewardAmp != nil {
		cfg.LegacyManualRewardAmp = *f.Config.LegacyManualRewardAmp
	}
	return cfg
}

// #endregion conversion
