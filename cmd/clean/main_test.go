package main

import (
	"testing"
)

func TestWorkerCount(t *testing.T) {
	testCases := []struct {
		name     string
		flagVal  int
		cfgVal   int
		expected int
	}{
		{
			name:     "Flag wins over config",
			flagVal:  8,
			cfgVal:   4,
			expected: 8,
		},
		{
			name:     "Config used when flag unset",
			flagVal:  0,
			cfgVal:   4,
			expected: 4,
		},
		{
			name:     "Sequential when both unset",
			flagVal:  0,
			cfgVal:   0,
			expected: 1,
		},
		{
			name:     "Negative flag ignored",
			flagVal:  -1,
			cfgVal:   2,
			expected: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := workerCount(tc.flagVal, tc.cfgVal); got != tc.expected {
				t.Errorf("workerCount(%d, %d) = %d, want %d", tc.flagVal, tc.cfgVal, got, tc.expected)
			}
		})
	}
}
