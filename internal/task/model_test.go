package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority_Valid(t *testing.T) {
	testCases := []struct {
		priority Priority
		want     bool
	}{
		{priority: PriorityLow, want: true},
		{priority: PriorityMedium, want: true},
		{priority: PriorityHigh, want: true},
		{priority: Priority("Urgent"), want: false},
		{priority: Priority(""), want: false},
		{priority: Priority("high"), want: false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.priority), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.priority.Valid())
		})
	}
}

func TestPriority_Weight(t *testing.T) {
	testCases := []struct {
		priority Priority
		want     float64
	}{
		{priority: PriorityLow, want: 1.0},
		{priority: PriorityMedium, want: 1.5},
		{priority: PriorityHigh, want: 2.0},
		{priority: Priority("unknown"), want: 1.0},
	}
	for _, tc := range testCases {
		t.Run(string(tc.priority), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.priority.Weight())
		})
	}
}
