package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"single broker", "localhost:9092", []string{"localhost:9092"}},
		{"trims and drops blanks", " a:9092 , ,b:9092,", []string{"a:9092", "b:9092"}},
		{"repeats keep first position", "b:9092,a:9092,b:9092", []string{"b:9092", "a:9092"}},
		{"case is significant", "Host:1,host:1", []string{"Host:1", "host:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}

func TestDedupeAndTrimNil(t *testing.T) {
	assert.Empty(t, DedupeAndTrim(nil))
}
