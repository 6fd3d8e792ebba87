package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want RequestOptions
	}{
		{
			name: "nil map uses defaults",
			opts: nil,
			want: RequestOptions{MaxTokens: DefaultMaxTokens, Model: "default-model"},
		},
		{
			name: "full override",
			opts: map[string]any{
				"max_tokens": 256,
				"model":      "other-model",
				"system":     "be brief",
			},
			want: RequestOptions{MaxTokens: 256, Model: "other-model", System: "be brief"},
		},
		{
			name: "invalid max_tokens ignored",
			opts: map[string]any{"max_tokens": -5},
			want: RequestOptions{MaxTokens: DefaultMaxTokens, Model: "default-model"},
		},
		{
			name: "wrong types ignored",
			opts: map[string]any{"max_tokens": "many", "model": 7},
			want: RequestOptions{MaxTokens: DefaultMaxTokens, Model: "default-model"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequestOptions(tt.opts, "default-model")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequestOptions_Temperature(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got := ParseRequestOptions(map[string]any{"temperature": 0.7}, "m")
		require.NotNil(t, got.Temperature)
		assert.InDelta(t, 0.7, *got.Temperature, 0)
	})

	t.Run("out of range", func(t *testing.T) {
		got := ParseRequestOptions(map[string]any{"temperature": 3.5}, "m")
		assert.Nil(t, got.Temperature)
	})

	t.Run("absent", func(t *testing.T) {
		got := ParseRequestOptions(nil, "m")
		assert.Nil(t, got.Temperature)
	})
}

func TestTokenCounter_EstimateTokens(t *testing.T) {
	tc := NewTokenCounter()

	assert.Equal(t, 0, tc.EstimateTokens(""))
	assert.Equal(t, 1, tc.EstimateTokens("four"))
	assert.Equal(t, 25, tc.EstimateTokens(string(make([]byte, 100))))
}

func TestTokenCounter_GetTokenCount(t *testing.T) {
	tc := NewTokenCounter()

	assert.Equal(t, 42, tc.GetTokenCount(42, "irrelevant"))
	assert.Equal(t, 2, tc.GetTokenCount(0, "eight ch"))
}

func TestBaseProvider_ModelAccess(t *testing.T) {
	var p BaseProvider
	p.SetModel("model-a")
	assert.Equal(t, "model-a", p.GetModel())
	p.SetModel("model-b")
	assert.Equal(t, "model-b", p.GetModel())
}
