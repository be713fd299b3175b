// Package interpreter turns natural language messages into task operations.
// A message is classified into an intent, its slots (title, priority, due
// date, target, new value) are extracted with regexp cascades, title
// references are resolved against the user's stored tasks, and the resulting
// operation is executed through the task service.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/task"
)

// Interpreter executes natural language task commands for one message at a
// time. It is stateless across messages; all state lives in the task service.
type Interpreter struct {
	tasks *task.Service
	now   func() time.Time
}

func New(tasks *task.Service) *Interpreter {
	return &Interpreter{
		tasks: tasks,
		now:   time.Now,
	}
}

// Parse classifies the message and extracts its slots without touching
// storage. Parsing is deterministic: the same message always yields the same
// command.
func Parse(message string) Command {
	m := strings.ToLower(strings.TrimSpace(message))
	cmd := Command{
		RawMessage: strings.TrimSpace(message),
		Intent:     Classify(m),
	}
	switch cmd.Intent {
	case IntentAdd:
		cmd.Title = extractAddTitle(m)
		if p, ok := extractPriority(m); ok {
			cmd.Priority = p
		}
		if d, ok := extractDueDate(m); ok {
			cmd.DueDate = d
		}
	case IntentList:
		cmd.Filter = extractListFilter(m)
	case IntentUpdate:
		cmd.Title, cmd.NewValue, _ = extractUpdate(m)
	case IntentComplete:
		cmd.Title, _ = extractCompleteTarget(m)
	case IntentDelete:
		cmd.Title, _ = extractDeleteTarget(m)
	}
	return cmd
}

// Interpret parses the message and executes the resulting command against the
// user's tasks. It always returns a Result; failures are reported in the
// result, never as an error, so the chat layer can relay them verbatim.
func (i *Interpreter) Interpret(ctx context.Context, userID, message string) Result {
	cmd := Parse(message)
	switch cmd.Intent {
	case IntentAdd:
		return i.add(ctx, userID, cmd)
	case IntentList:
		return i.list(ctx, userID, cmd)
	case IntentUpdate:
		return i.update(ctx, userID, cmd)
	case IntentComplete:
		return i.complete(ctx, userID, cmd)
	case IntentDelete:
		return i.delete(ctx, userID, cmd)
	case IntentCount:
		return i.count(ctx, userID, cmd)
	}
	return unrecognized(cmd.RawMessage)
}

func (i *Interpreter) add(ctx context.Context, userID string, cmd Command) Result {
	if cmd.Title == "" {
		return unrecognized(cmd.RawMessage)
	}

	var dueDate *time.Time
	if cmd.DueDate != "" {
		d, err := i.normalizeDueDate(cmd.DueDate)
		if err != nil {
			return failure(ErrInvalidDueDate, "Invalid due date format")
		}
		dueDate = &d
	}

	t, err := i.tasks.Add(ctx, userID, task.AddParams{
		Title:    cmd.Title,
		Priority: cmd.Priority,
		DueDate:  dueDate,
	})
	if err != nil {
		return i.serviceFailure(ctx, err, "Failed to add task")
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Task '%s' has been added successfully", t.Title),
		Add:     &AddResult{Task: t},
	}
}

func (i *Interpreter) list(ctx context.Context, userID string, cmd Command) Result {
	tasks, err := i.tasks.List(ctx, userID, cmd.Filter)
	if err != nil {
		return i.serviceFailure(ctx, err, "Failed to list tasks")
	}
	return Result{
		Success: true,
		Message: listMessage(len(tasks)),
		List:    &ListResult{Tasks: tasks, Count: len(tasks)},
	}
}

func (i *Interpreter) update(ctx context.Context, userID string, cmd Command) Result {
	if cmd.Title == "" || cmd.NewValue == "" {
		return unrecognized(cmd.RawMessage)
	}
	t, res := i.resolve(ctx, userID, cmd.Title)
	if t == nil {
		return res
	}

	params, res := updateParams(cmd)
	if res.Err != ErrNone {
		return res
	}

	updated, changes, err := i.tasks.Update(ctx, userID, t.ID, params)
	if err != nil {
		return i.serviceFailure(ctx, err, "Failed to update task")
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Task '%s' has been updated (%s)", updated.Title, strings.Join(changes, ", ")),
		Update:  &UpdateResult{Task: updated, Changes: changes},
	}
}

// updateParams decides which task field the new value applies to. A field
// word in the message ("priority", "status", "due") wins; otherwise the
// value is treated as a new title.
func updateParams(cmd Command) (task.UpdateParams, Result) {
	m := strings.ToLower(cmd.RawMessage)
	value := cmd.NewValue

	switch {
	case strings.Contains(m, "priority"):
		p := task.Priority(firstWord(value))
		if !p.Valid() {
			return task.UpdateParams{}, failure(ErrInvalidPriority, "Invalid priority. Must be 'low', 'medium', or 'high'")
		}
		return task.UpdateParams{Priority: &p}, Result{}
	case strings.Contains(m, "status"):
		s := task.Status(strings.ReplaceAll(firstWord(value), "_", "-"))
		if !s.Valid() {
			return task.UpdateParams{}, failure(ErrInvalidStatus, "Invalid status. Must be 'pending', 'in-progress', or 'completed'")
		}
		return task.UpdateParams{Status: &s}, Result{}
	default:
		return task.UpdateParams{Title: &value}, Result{}
	}
}

func (i *Interpreter) complete(ctx context.Context, userID string, cmd Command) Result {
	if cmd.Title == "" {
		return unrecognized(cmd.RawMessage)
	}
	t, res := i.resolve(ctx, userID, cmd.Title)
	if t == nil {
		return res
	}

	completed, err := i.tasks.Complete(ctx, userID, t.ID, true)
	if err != nil {
		return i.serviceFailure(ctx, err, "Failed to complete task")
	}
	return Result{
		Success:  true,
		Message:  fmt.Sprintf("Task '%s' has been completed", completed.Title),
		Complete: &CompleteResult{Task: completed},
	}
}

func (i *Interpreter) delete(ctx context.Context, userID string, cmd Command) Result {
	if cmd.Title == "" {
		return unrecognized(cmd.RawMessage)
	}
	t, res := i.resolve(ctx, userID, cmd.Title)
	if t == nil {
		return res
	}

	deleted, err := i.tasks.Delete(ctx, userID, t.ID)
	if err != nil {
		return i.serviceFailure(ctx, err, "Failed to delete task")
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Task '%s' has been deleted successfully", deleted.Title),
		Delete:  &DeleteResult{Task: deleted},
	}
}

func (i *Interpreter) count(ctx context.Context, userID string, cmd Command) Result {
	tasks, err := i.tasks.List(ctx, userID, cmd.Filter)
	if err != nil {
		return i.serviceFailure(ctx, err, "Failed to count tasks")
	}
	n := len(tasks)
	return Result{
		Success: true,
		Message: fmt.Sprintf("You have %d tasks. %s.", n, listMessage(n)),
		Count:   &CountResult{Count: n},
	}
}

// resolve finds the task a title reference points at: all tasks whose title
// contains the query, case-insensitively, with the most recently created one
// winning. A nil task means resolution failed and the returned Result is the
// reply to send.
func (i *Interpreter) resolve(ctx context.Context, userID, query string) (*task.Task, Result) {
	matches, err := i.tasks.FindByTitle(ctx, userID, query)
	if err != nil {
		return nil, i.serviceFailure(ctx, err, "Failed to look up task")
	}
	if len(matches) == 0 {
		return nil, failure(ErrTaskNotFound,
			fmt.Sprintf("No task found containing '%s'. Could you be more specific?", query))
	}
	return matches[0], Result{}
}

var relativeDueDateRe = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks)$`)

// normalizeDueDate turns a due date literal, absolute or relative, into a
// concrete time. Relative phrases are anchored to the current day.
func (i *Interpreter) normalizeDueDate(literal string) (time.Time, error) {
	l := strings.TrimSpace(strings.ToLower(literal))
	now := i.now()

	switch l {
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	case "next week":
		return now.AddDate(0, 0, 7), nil
	case "next month":
		return now.AddDate(0, 1, 0), nil
	case "next year":
		return now.AddDate(1, 0, 0), nil
	}
	if sub := relativeDueDateRe.FindStringSubmatch(l); sub != nil {
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return time.Time{}, err
		}
		if strings.HasPrefix(sub[2], "week") {
			n *= 7
		}
		return now.AddDate(0, 0, n), nil
	}
	for _, layout := range []string{"2006-1-2", "1/2/2006", "1-2-2006"} {
		if t, err := time.Parse(layout, l); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339, l)
}

// serviceFailure maps a task service error onto the result taxonomy. Known
// validation errors keep their user-facing message; anything else is logged
// and reported generically so storage details never reach the user.
func (i *Interpreter) serviceFailure(ctx context.Context, err error, generic string) Result {
	switch {
	case errors.Is(err, task.ErrInvalidPriority):
		return failure(ErrInvalidPriority, task.ErrInvalidPriority.Msg)
	case errors.Is(err, task.ErrInvalidStatus):
		return failure(ErrInvalidStatus, task.ErrInvalidStatus.Msg)
	case errors.Is(err, task.ErrInvalidDueDate):
		return failure(ErrInvalidDueDate, task.ErrInvalidDueDate.Msg)
	case errors.Is(err, task.ErrNoChange):
		return failure(ErrNoChangeRequested, task.ErrNoChange.Msg)
	}
	slog.ErrorContext(ctx, "task command failed", "error", err)
	return failure(ErrOperationFailed, generic)
}

func listMessage(n int) string {
	if n == 0 {
		return "No tasks found"
	}
	return fmt.Sprintf("Found %d tasks", n)
}

func unrecognized(message string) Result {
	return failure(ErrUnrecognized, fmt.Sprintf(
		"I'm not sure how to handle '%s'. You can ask me to add tasks, list your tasks, update tasks, complete tasks, or delete tasks. For example: 'Add a task to buy groceries', 'Show my pending tasks', or 'Mark the meeting task as complete'.",
		message))
}

func firstWord(s string) string {
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx]
	}
	return s
}
