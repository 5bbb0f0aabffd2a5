package classify

import (
	"fmt"
	"strings"
	"testing"

	"github.com/logtriage/logtriage/internal/common"
)

func record(level common.LogLevel, message string) *common.LogRecord {
	return &common.LogRecord{Level: level, Message: message, OriginClass: "OrderService"}
}

func TestClassifyGroupsByCanonicalMessage(t *testing.T) {
	records := []*common.LogRecord{
		record(common.LevelError, "Failed to load user_id=123 from cache"),
		record(common.LevelError, "Failed to load user_id=456 from cache"),
		record(common.LevelWarn, "slow query detected"),
	}

	got := New(DefaultOptions()).Classify(records)
	if len(got) != 2 {
		t.Fatalf("want 2 groups, got %d", len(got))
	}
	if got[0].Frequency != 2 {
		t.Errorf("masked variants should share a group, frequency = %d", got[0].Frequency)
	}
	if got[0].Message != "Failed to load user_id=<ID> from cache" {
		t.Errorf("unexpected canonical key %q", got[0].Message)
	}
	examples := got[0].Examples()
	if len(examples) != 2 {
		t.Fatalf("want 2 distinct examples, got %d", len(examples))
	}
	if examples[0] != "Failed to load user_id=123 from cache" {
		t.Errorf("examples must keep raw text, got %q", examples[0])
	}
}

func TestClassifyFrequencyPreserved(t *testing.T) {
	var records []*common.LogRecord
	for i := 0; i < 7; i++ {
		records = append(records, record(common.LevelError, "payment declined"))
	}
	for i := 0; i < 3; i++ {
		records = append(records, record(common.LevelWarn, "slow query detected"))
	}

	got := New(DefaultOptions()).Classify(records)
	sum := 0
	for _, e := range got {
		sum += e.Frequency
	}
	if sum != len(records) {
		t.Errorf("frequencies must sum to record count: %d != %d", sum, len(records))
	}
}

func TestClassifyCriticality(t *testing.T) {
	tests := []struct {
		name      string
		level     common.LogLevel
		frequency int
		want      common.Criticality
	}{
		{"error is always high", common.LevelError, 1, common.CriticalityHigh},
		{"fatal is always high", common.LevelFatal, 1, common.CriticalityHigh},
		{"warn at threshold stays medium", common.LevelWarn, 50, common.CriticalityMedium},
		{"warn above threshold escalates", common.LevelWarn, 51, common.CriticalityHigh},
		{"info never escalates", common.LevelInfo, 1000, common.CriticalityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []*common.LogRecord
			for i := 0; i < tt.frequency; i++ {
				records = append(records, record(tt.level, "disk almost full"))
			}
			got := New(DefaultOptions()).Classify(records)
			if len(got) != 1 {
				t.Fatalf("want 1 group, got %d", len(got))
			}
			if got[0].Criticality != tt.want {
				t.Errorf("criticality = %v, want %v", got[0].Criticality, tt.want)
			}
		})
	}
}

func TestClassifyDominantLevel(t *testing.T) {
	records := []*common.LogRecord{
		record(common.LevelWarn, "pool exhausted"),
		record(common.LevelError, "pool exhausted"),
		record(common.LevelWarn, "pool exhausted"),
	}
	got := New(DefaultOptions()).Classify(records)
	if len(got) != 1 {
		t.Fatalf("want 1 group, got %d", len(got))
	}
	if got[0].Level != common.LevelError {
		t.Errorf("dominant level = %v, want ERROR", got[0].Level)
	}
	if got[0].Criticality != common.CriticalityHigh {
		t.Errorf("group with an ERROR record must be high, got %v", got[0].Criticality)
	}
}

func TestClassifyDropsNoiseGroups(t *testing.T) {
	records := []*common.LogRecord{
		record(common.LevelError, "Произошла ошибка"),
		record(common.LevelError, "connection refused"),
	}
	got := New(DefaultOptions()).Classify(records)
	if len(got) != 1 {
		t.Fatalf("want 1 group after noise drop, got %d", len(got))
	}
	if got[0].Message != "connection refused" {
		t.Errorf("wrong surviving group: %q", got[0].Message)
	}
}

func TestClassifyExampleLimits(t *testing.T) {
	long := strings.Repeat("x", 300)
	var records []*common.LogRecord
	for i := 0; i < 10; i++ {
		records = append(records, record(common.LevelError, fmt.Sprintf("%s user_id=%d", long, i)))
	}

	got := New(DefaultOptions()).Classify(records)
	if len(got) != 1 {
		t.Fatalf("want 1 group, got %d", len(got))
	}
	examples := got[0].Examples()
	if len(examples) != 5 {
		t.Fatalf("want 5 examples, got %d", len(examples))
	}
	for _, e := range examples {
		if len([]rune(e)) != 203 || !strings.HasSuffix(e, "...") {
			t.Errorf("example not capped at 200 runes with ellipsis: %d runes", len([]rune(e)))
		}
	}
}

func TestClassifySortedByFrequency(t *testing.T) {
	records := []*common.LogRecord{
		record(common.LevelWarn, "rare warning"),
		record(common.LevelError, "common failure"),
		record(common.LevelError, "common failure"),
		record(common.LevelError, "common failure"),
	}
	got := New(DefaultOptions()).Classify(records)
	if len(got) != 2 || got[0].Message != "common failure" {
		t.Fatalf("expected descending frequency order, got %+v", got)
	}
}
