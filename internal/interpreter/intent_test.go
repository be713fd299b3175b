package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskpilot/taskpilot/internal/task"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"Add a task to buy groceries with high priority by tomorrow", IntentAdd},
		{"Create a new task for the quarterly report", IntentAdd},
		{"What are my pending tasks?", IntentList},
		{"Show my completed tasks", IntentList},
		{"Change the groceries task priority to low", IntentUpdate},
		{"Mark the groceries task as complete", IntentComplete},
		{"Finish the report", IntentComplete},
		{"Delete the nonexistent task", IntentDelete},
		{"How many tasks do I have?", IntentCount},
		// "how many" alone is not enough for a count.
		{"How many apples are in a bushel?", IntentUnrecognized},
		{"hello there", IntentUnrecognized},
		// Conflicting keywords: add beats list, list beats complete.
		{"Add a task and show it to me", IntentAdd},
		{"Show my done tasks", IntentList},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestParseAdd(t *testing.T) {
	tests := []struct {
		message      string
		wantTitle    string
		wantPriority task.Priority
		wantDueDate  string
	}{
		{
			message:      "Add a task to buy groceries with high priority by tomorrow",
			wantTitle:    "buy groceries",
			wantPriority: task.PriorityHigh,
			wantDueDate:  "tomorrow",
		},
		{
			message:   "Add a task to call the dentist",
			wantTitle: "call the dentist",
		},
		{
			message:     "Create a task to pay rent by 2025-07-01",
			wantTitle:   "pay rent",
			wantDueDate: "2025-07-01",
		},
		{
			message:     "Add a task to water the plants in 3 days",
			wantTitle:   "water the plants",
			wantDueDate: "in 3 days",
		},
		{
			message:   "add buy milk todo",
			wantTitle: "buy milk",
		},
		{
			message:      "schedule dentist appointment with low priority",
			wantTitle:    "dentist appointment with low priority",
			wantPriority: task.PriorityLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			cmd := Parse(tt.message)
			assert.Equal(t, IntentAdd, cmd.Intent)
			assert.Equal(t, tt.wantTitle, cmd.Title)
			assert.Equal(t, tt.wantPriority, cmd.Priority)
			assert.Equal(t, tt.wantDueDate, cmd.DueDate)
		})
	}
}

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		message    string
		wantTarget string
		wantValue  string
	}{
		{"Change the groceries task priority to low", "groceries", "low"},
		{"Update the report title to quarterly summary", "report", "quarterly summary"},
		{"edit groceries to buy apples instead", "groceries", "buy apples instead"},
		{"change the meeting status to in-progress", "meeting", "in-progress"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			cmd := Parse(tt.message)
			assert.Equal(t, IntentUpdate, cmd.Intent)
			assert.Equal(t, tt.wantTarget, cmd.Title)
			assert.Equal(t, tt.wantValue, cmd.NewValue)
		})
	}
}

func TestParseCompleteAndDelete(t *testing.T) {
	tests := []struct {
		message    string
		wantIntent Intent
		wantTarget string
	}{
		{"Mark the groceries task as complete", IntentComplete, "groceries"},
		{"Finish the report", IntentComplete, "report"},
		{"complete task 3", IntentComplete, "3"},
		{"Delete the nonexistent task", IntentDelete, "nonexistent"},
		{"remove the task about dentist appointment", IntentDelete, "dentist appointment"},
		{"delete task 7", IntentDelete, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			cmd := Parse(tt.message)
			assert.Equal(t, tt.wantIntent, cmd.Intent)
			assert.Equal(t, tt.wantTarget, cmd.Title)
		})
	}
}

func TestParseListFilter(t *testing.T) {
	tests := []struct {
		message      string
		wantStatus   task.Status
		wantPriority task.Priority
	}{
		{"What are my pending tasks?", task.StatusPending, ""},
		{"Show my completed tasks", task.StatusCompleted, ""},
		{"show tasks in progress", task.StatusInProgress, ""},
		{"show my high priority tasks", "", task.PriorityHigh},
		{"show my urgent pending tasks", task.StatusPending, task.PriorityHigh},
		{"show all my tasks", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			cmd := Parse(tt.message)
			assert.Equal(t, IntentList, cmd.Intent)
			assert.Equal(t, tt.wantStatus, cmd.Filter.Status)
			assert.Equal(t, tt.wantPriority, cmd.Filter.Priority)
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	message := "Add a task to buy groceries with high priority by tomorrow"
	assert.Equal(t, Parse(message), Parse(message))
}
