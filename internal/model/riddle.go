package model

import "time"

type TimingKind int

const (
	TimingUnlimited TimingKind = iota
	TimingLimited
)

// MaxTimeLimitMinutes caps a riddle countdown at 24 hours. Requested values
// above the cap are truncated, not rejected.
const MaxTimeLimitMinutes = 1440

// Timing is the countdown variant chosen during authoring.
type Timing struct {
	Kind    TimingKind
	Minutes int
}

func UnlimitedTiming() Timing {
	return Timing{Kind: TimingUnlimited}
}

func LimitedTiming(minutes int) Timing {
	if minutes > MaxTimeLimitMinutes {
		minutes = MaxTimeLimitMinutes
	}
	return Timing{Kind: TimingLimited, Minutes: minutes}
}

func (t Timing) Limited() bool {
	return t.Kind == TimingLimited
}

// Duration returns the configured limit; zero for unlimited riddles.
func (t Timing) Duration() time.Duration {
	if t.Kind != TimingLimited {
		return 0
	}
	return time.Duration(t.Minutes) * time.Minute
}

type HintKind int

const (
	HintNone HintKind = iota
	// HintImmediate fires on the first countdown tick after activation.
	HintImmediate
	// HintDelayed fires a fixed number of minutes after activation. Only
	// meaningful for unlimited riddles.
	HintDelayed
	// HintAuto80 fires when 80% of the time limit has elapsed. Always used
	// when a time limit is set, regardless of any requested delay.
	HintAuto80
)

type Hint struct {
	Kind         HintKind
	Text         string
	DelayMinutes int
}

func NoHint() Hint {
	return Hint{Kind: HintNone}
}

func (h Hint) Configured() bool {
	return h.Kind != HintNone
}

// FireAt reports when the hint becomes due relative to the activation time.
// ok is false when no hint is configured.
func (h Hint) FireAt(start time.Time, timing Timing) (at time.Time, ok bool) {
	switch h.Kind {
	case HintAuto80:
		return start.Add(timing.Duration() * 8 / 10), true
	case HintDelayed:
		return start.Add(time.Duration(h.DelayMinutes) * time.Minute), true
	case HintImmediate:
		return start, true
	default:
		return time.Time{}, false
	}
}

// Riddle is the central entity. A draft has no bound message and is never
// matched against incoming answers; activation binds the posted message id
// and starts the countdown.
type Riddle struct {
	ID        int64
	ChatID    int64
	CreatorID int64
	Text      string
	Answer    string
	Prize     string
	PhotoID   string

	Timing Timing
	Hint   Hint

	MessageID *int
	Active    bool
	StartTime *time.Time
	EndTime   *time.Time
}

// Draft reports whether the riddle has never been activated.
func (r *Riddle) Draft() bool {
	return !r.Active && r.MessageID == nil
}
