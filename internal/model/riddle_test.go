package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitedTiming_Clamp(t *testing.T) {
	assert.Equal(t, 10, LimitedTiming(10).Minutes)
	assert.Equal(t, MaxTimeLimitMinutes, LimitedTiming(2000).Minutes)
	assert.Equal(t, 10*time.Minute, LimitedTiming(10).Duration())
	assert.Equal(t, time.Duration(0), UnlimitedTiming().Duration())
}

func TestHint_FireAt(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		hint   Hint
		timing Timing
		wantAt time.Time
		wantOK bool
	}{
		{
			// 80% of a 10 minute limit is 480 seconds in.
			name:   "auto80 with 10 minute limit",
			hint:   Hint{Kind: HintAuto80, Text: "look up"},
			timing: LimitedTiming(10),
			wantAt: start.Add(480 * time.Second),
			wantOK: true,
		},
		{
			name:   "auto80 ignores a configured delay",
			hint:   Hint{Kind: HintAuto80, Text: "look up", DelayMinutes: 3},
			timing: LimitedTiming(10),
			wantAt: start.Add(480 * time.Second),
			wantOK: true,
		},
		{
			name:   "delayed fires delay minutes after start",
			hint:   Hint{Kind: HintDelayed, Text: "look up", DelayMinutes: 15},
			timing: UnlimitedTiming(),
			wantAt: start.Add(15 * time.Minute),
			wantOK: true,
		},
		{
			name:   "immediate fires at start",
			hint:   Hint{Kind: HintImmediate, Text: "look up"},
			timing: UnlimitedTiming(),
			wantAt: start,
			wantOK: true,
		},
		{
			name:   "no hint never fires",
			hint:   NoHint(),
			timing: LimitedTiming(10),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, ok := tt.hint.FireAt(start, tt.timing)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantAt, at)
			}
		})
	}
}
