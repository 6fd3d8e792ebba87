package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMalformedRecordError_Unwrap(t *testing.T) {
	err := &MalformedRecordError{
		Line:     7,
		ProjectA: "alpha",
		ProjectB: "beta",
		Winner:   "gamma",
	}

	assert.True(t, errors.Is(err, ErrMalformedRecord))
	assert.Contains(t, err.Error(), "line 7")
	assert.Contains(t, err.Error(), `"gamma"`)
}

func TestMalformedRecordError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *MalformedRecordError
		want string
	}{
		{
			name: "missing winner",
			err:  &MalformedRecordError{Line: 2, ProjectA: "alpha", ProjectB: "beta"},
			want: "no winner recorded",
		},
		{
			name: "unknown winner with suggestion",
			err: &MalformedRecordError{
				Line: 3, ProjectA: "alpha", ProjectB: "beta",
				Winner: "alpah", Suggestion: "alpha",
			},
			want: `did you mean "alpha"?`,
		},
		{
			name: "unknown winner without suggestion",
			err: &MalformedRecordError{
				Line: 4, ProjectA: "alpha", ProjectB: "beta", Winner: "zzz",
			},
			want: `winner "zzz" is not one of`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.want)
		})
	}
}

func TestInvalidScoreError_Unwrap(t *testing.T) {
	err := &InvalidScoreError{Project: "alpha", Score: -0.5}

	assert.True(t, errors.Is(err, ErrInvalidScore))
	assert.Contains(t, err.Error(), "alpha")
}

func TestBudgetExceededError(t *testing.T) {
	err := NewBudgetExceededError("tokens", 1000, 1500)

	require.NotNil(t, err)
	assert.Equal(t, "tokens", err.LimitType)
	assert.Equal(t, int64(1000), err.Limit)
	assert.Equal(t, int64(1500), err.Used)
	assert.Contains(t, err.Error(), "limit 1000")
	assert.Contains(t, err.Error(), "used 1500")
}

func TestUsage_Add(t *testing.T) {
	usage := Usage{}

	usage = usage.Add(100)
	usage = usage.Add(250)

	assert.Equal(t, int64(350), usage.Tokens)
	assert.Equal(t, int64(2), usage.Calls)
}

func TestOutcome_Loser(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{
			name:    "a wins",
			outcome: Outcome{ProjectA: "alpha", ProjectB: "beta", Winner: "alpha"},
			want:    "beta",
		},
		{
			name:    "b wins",
			outcome: Outcome{ProjectA: "alpha", ProjectB: "beta", Winner: "beta"},
			want:    "alpha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Loser())
		})
	}
}

func TestRecord_WinRate(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   float64
	}{
		{name: "no appearances", record: Record{}, want: 0},
		{name: "all wins", record: Record{Wins: 3, Total: 3}, want: 1.0},
		{name: "partial", record: Record{Wins: 2, Total: 3}, want: 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.record.WinRate(), 1e-12)
		})
	}
}
