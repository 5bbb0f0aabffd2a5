package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logtriage/logtriage/internal/common"
)

func TestRecoverFencedReply(t *testing.T) {
	raw := "Вот результат анализа:\n```json\n[{\"message\":\"m\",\"frequency\":3,\"criticality\":\"low\",\"recommendation\":\"do X\"}]\n```\nНадеюсь, это поможет."

	result := New(nil).Recover(raw)

	assert.Equal(t, StrategyStrict, result.Strategy)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "m", result.Records[0].Message)
	assert.Equal(t, 3, result.Records[0].Frequency)
	assert.Equal(t, common.CriticalityLow, result.Records[0].Criticality)
	assert.Equal(t, "do X", result.Records[0].Recommendation)
}

func TestRecoverTrailingComma(t *testing.T) {
	raw := `[{"message":"m","frequency":1,"criticality":"low","recommendation":"x"},]`

	result := New(nil).Recover(raw)

	assert.Equal(t, StrategyRepair, result.Strategy)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "m", result.Records[0].Message)
}

func TestRecoverLineComments(t *testing.T) {
	raw := "[\n// первый элемент\n{\"message\":\"m\",\"frequency\":2,\"criticality\":\"high\",\"recommendation\":\"x\"}\n]"

	result := New(nil).Recover(raw)

	assert.Equal(t, StrategyStrict, result.Strategy)
	require.Len(t, result.Records, 1)
	assert.Equal(t, common.CriticalityHigh, result.Records[0].Criticality)
}

func TestRecoverSalvage(t *testing.T) {
	raw := `[{"message":"a","frequency":1,"criticality":"low","recommendation":"x"}, {"message": oops,"frequency":2}]`

	result := New(nil).Recover(raw)

	assert.Equal(t, StrategySalvage, result.Strategy)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "a", result.Records[0].Message)
	assert.Equal(t, 1, result.Skipped)
}

func TestRecoverProseFallback(t *testing.T) {
	raw := "#### Ошибка №1: `boom`  Частота: 7  Критичность: high"

	result := New(nil).Recover(raw)

	assert.Equal(t, StrategyProse, result.Strategy)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "boom", result.Records[0].Message)
	assert.Equal(t, 7, result.Records[0].Frequency)
	assert.Equal(t, common.CriticalityHigh, result.Records[0].Criticality)
	assert.Equal(t, "—", result.Records[0].Recommendation)
}

func TestRecoverProseDefaults(t *testing.T) {
	raw := "#### Ошибка №1:\nчто-то пошло не так\n\nРекомендации:\n- Проверить конфигурацию\n\nКонец."

	result := New(nil).Recover(raw)

	require.Len(t, result.Records, 1)
	r := result.Records[0]
	assert.Equal(t, "Неизвестно", r.Message)
	assert.Equal(t, 1, r.Frequency)
	assert.Equal(t, common.CriticalityLow, r.Criticality)
	assert.Equal(t, "Проверить конфигурацию", r.Recommendation)
}

func TestRecoverRussianCriticality(t *testing.T) {
	raw := "#### Ошибка №1: `boom` Критичность: высокая"

	result := New(nil).Recover(raw)

	require.Len(t, result.Records, 1)
	assert.Equal(t, common.CriticalityHigh, result.Records[0].Criticality)
}

func TestRecoverUnrecoverable(t *testing.T) {
	result := New(nil).Recover("ничем не могу помочь")

	assert.Equal(t, StrategyNone, result.Strategy)
	assert.Empty(t, result.Records)
}

func TestRecoverSkipsMalformedSiblings(t *testing.T) {
	raw := `[{"message":"good","frequency":1,"criticality":"low","recommendation":"x"},{"frequency":2,"criticality":"low","recommendation":"y"}]`

	result := New(nil).Recover(raw)

	assert.Equal(t, StrategyStrict, result.Strategy)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "good", result.Records[0].Message)
	assert.Equal(t, 1, result.Skipped)
}

func TestCoerceItemVariants(t *testing.T) {
	tests := []struct {
		name    string
		item    string
		want    common.ProblemRecord
		wantErr bool
	}{
		{
			name: "positional item",
			item: `["timeout", 4, "high", "increase the limit"]`,
			want: common.ProblemRecord{
				Message:        "timeout",
				Frequency:      4,
				Criticality:    common.CriticalityHigh,
				Recommendation: "increase the limit",
			},
		},
		{
			name: "numeric frequency list is summed",
			item: `{"message":"m","frequency":[2,3],"criticality":"low","recommendation":"x"}`,
			want: common.ProblemRecord{
				Message:        "m",
				Frequency:      5,
				Criticality:    common.CriticalityLow,
				Recommendation: "x",
			},
		},
		{
			name: "non-numeric frequency list is counted",
			item: `{"message":"m","frequency":["a","b","c"],"criticality":"low","recommendation":"x"}`,
			want: common.ProblemRecord{
				Message:        "m",
				Frequency:      3,
				Criticality:    common.CriticalityLow,
				Recommendation: "x",
			},
		},
		{
			name: "recommendation list joined with newlines",
			item: `{"message":"m","frequency":1,"criticality":"low","recommendation":["step one","step two"]}`,
			want: common.ProblemRecord{
				Message:        "m",
				Frequency:      1,
				Criticality:    common.CriticalityLow,
				Recommendation: "step one\nstep two",
			},
		},
		{
			name: "unknown extra fields dropped",
			item: `{"message":"m","frequency":1,"criticality":"low","recommendation":"x","confidence":0.9}`,
			want: common.ProblemRecord{
				Message:        "m",
				Frequency:      1,
				Criticality:    common.CriticalityLow,
				Recommendation: "x",
			},
		},
		{
			name: "optional fields carried through",
			item: `{"message":"m","frequency":1,"criticality":"low","recommendation":"x","root_cause":"bad index","info_needed":"query plan"}`,
			want: common.ProblemRecord{
				Message:        "m",
				Frequency:      1,
				Criticality:    common.CriticalityLow,
				Recommendation: "x",
				RootCause:      "bad index",
				InfoNeeded:     "query plan",
			},
		},
		{
			name:    "message required",
			item:    `{"frequency":1,"criticality":"low","recommendation":"x"}`,
			wantErr: true,
		},
		{
			name:    "scalar item rejected",
			item:    `"just a string"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceItem([]byte(tt.item))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
