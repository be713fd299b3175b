package interpreter

import (
	"regexp"
	"strings"

	"github.com/taskpilot/taskpilot/internal/task"
)

// Slot extraction works on the lowercased message with regexp cascades. Each
// cascade is ordered most-specific first and stops at the first pattern that
// matches.

const (
	addTriggers      = `(?:add|create|make|new|schedule|put|plan)`
	updateTriggers   = `(?:update|change|modify|edit|adjust|alter)`
	completeTriggers = `(?:complete|finish|done|mark|accomplish|achieve)`
	deleteTriggers   = `(?:delete|remove|cancel|erase|eliminate)`
)

// addTitlePatterns extract the new task's title. The first pattern handles
// the "<trigger> a task to <title> with <extras>" shape and keeps the extras
// (priority and due date phrases) out of the title. The last is a catch-all.
var addTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(addTriggers + `\s+(?:a\s+)?(?:task|todo|item)\s+(?:to|for|about|that|which)\s+(.+?)(?:\s+with\s+.+)?$`),
	regexp.MustCompile(addTriggers + `\s+(.+?)\s+(?:task|todo|item)\b`),
	regexp.MustCompile(addTriggers + `\s+(.+)$`),
}

var trailingPrepositionRe = regexp.MustCompile(`\s+(?:by|on|before|until|due)$`)

// extractAddTitle returns the title slot for an add message, or "" when no
// pattern matches. Due date phrases hanging off the end of the captured
// title ("pay rent by tomorrow") are trimmed; they are extracted separately.
func extractAddTitle(m string) string {
	for _, re := range addTitlePatterns {
		sub := re.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		title := strings.TrimSpace(sub[1])
		for _, dre := range dueDatePatterns {
			if loc := dre.FindStringIndex(title); loc != nil && loc[1] == len(title) {
				title = strings.TrimSpace(title[:loc[0]])
				break
			}
		}
		return trailingPrepositionRe.ReplaceAllString(title, "")
	}
	return ""
}

var priorityPatterns = []struct {
	priority task.Priority
	re       *regexp.Regexp
}{
	{task.PriorityHigh, regexp.MustCompile(`\b(?:highest|high|critical|urgent|asap|top priority)\b`)},
	{task.PriorityMedium, regexp.MustCompile(`\b(?:medium|meh|normal|regular|standard)\b`)},
	{task.PriorityLow, regexp.MustCompile(`\b(?:low|lowest|optional|whenever|later)\b`)},
}

// extractPriority returns the priority mentioned in the message. High beats
// medium beats low when words from several groups appear.
func extractPriority(m string) (task.Priority, bool) {
	for _, p := range priorityPatterns {
		if p.re.MatchString(m) {
			return p.priority, true
		}
	}
	return "", false
}

// dueDatePatterns capture either an absolute date (group 1) or a relative
// phrase (whole match). The literal is normalized to a concrete date later,
// so relative phrases must survive extraction intact.
var dueDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:by|on|before|until|due)\s+(\d{4}-\d{1,2}-\d{1,2})\b`),
	regexp.MustCompile(`\b(?:by|on|before|until|due)\s+(\d{1,2}/\d{1,2}/\d{4})\b`),
	regexp.MustCompile(`\b(?:by|on|before|until|due)\s+(\d{1,2}-\d{1,2}-\d{4})\b`),
	regexp.MustCompile(`\bin\s+\d+\s+(?:day|days|week|weeks)\b`),
	regexp.MustCompile(`\btomorrow\b`),
	regexp.MustCompile(`\bnext\s+(?:week|month|year)\b`),
}

// extractDueDate returns the raw due date literal from the message, which is
// either an absolute date string or a relative phrase such as "in 3 days".
func extractDueDate(m string) (string, bool) {
	for _, re := range dueDatePatterns {
		sub := re.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		if len(sub) > 1 && sub[1] != "" {
			return sub[1], true
		}
		return sub[0], true
	}
	return "", false
}

// updatePatterns capture the target title and the new value. Field-qualified
// shapes ("change X priority to high") run before the generic "<trigger> X
// to Y" shape so the field word does not leak into the target.
var updatePatterns = []*regexp.Regexp{
	regexp.MustCompile(updateTriggers + `\s+(?:the\s+)?(.+?)(?:\s+(?:task|todo|item))?\s+(?:title|name)\s+(?:to|as)\s+(.+)$`),
	regexp.MustCompile(updateTriggers + `\s+(?:the\s+)?(.+?)(?:\s+(?:task|todo|item))?\s+(?:priority|due date|status)\s+(?:to|as)\s+(.+)$`),
	regexp.MustCompile(updateTriggers + `\s+(?:the\s+)?(.+?)\s+(?:to|as|with)\s+(.+)$`),
}

// extractUpdate returns the target title query and the new value phrase.
func extractUpdate(m string) (target, value string, ok bool) {
	for _, re := range updatePatterns {
		if sub := re.FindStringSubmatch(m); sub != nil {
			return trimTargetNoise(sub[1]), strings.TrimSpace(sub[2]), true
		}
	}
	return "", "", false
}

var completePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:mark|set)\s+(?:the\s+)?(.+?)\s+(?:as\s+)?(?:complete|completed|done|finished)$`),
	regexp.MustCompile(completeTriggers + `\s+(?:task\s+|#)(\d+)\b`),
	regexp.MustCompile(completeTriggers + `\s+(?:the\s+)?(.+?)(?:\s+(?:as\s+)?(?:complete|completed|done|finished))?$`),
}

func extractCompleteTarget(m string) (string, bool) {
	for _, re := range completePatterns {
		if sub := re.FindStringSubmatch(m); sub != nil {
			return trimTargetNoise(sub[1]), true
		}
	}
	return "", false
}

var deletePatterns = []*regexp.Regexp{
	regexp.MustCompile(deleteTriggers + `\s+(?:the\s+)?(?:task|todo|item)\s+(?:about|for|to)\s+(.+)$`),
	regexp.MustCompile(deleteTriggers + `\s+(?:task\s+|#)(\d+)\b`),
	regexp.MustCompile(deleteTriggers + `\s+(?:the\s+)?(.+?)(?:\s+(?:task|todo|item))?$`),
}

func extractDeleteTarget(m string) (string, bool) {
	for _, re := range deletePatterns {
		if sub := re.FindStringSubmatch(m); sub != nil {
			return trimTargetNoise(sub[1]), true
		}
	}
	return "", false
}

var trailingNoiseRe = regexp.MustCompile(`\s+(?:task|todo|item)s?$`)

// trimTargetNoise strips filler the user wraps around a title reference.
// "the groceries task" and "Buy groceries" must meet in the middle so the
// contains-based title resolution can find the stored task.
func trimTargetNoise(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"the ", "my ", "a "} {
		s = strings.TrimPrefix(s, prefix)
	}
	for {
		trimmed := trailingNoiseRe.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	return strings.TrimSpace(s)
}

var (
	statusFilterKeywords = []struct {
		status task.Status
		words  []string
	}{
		{task.StatusPending, []string{"pending", "incomplete", "not done", "to do", "todo", "open"}},
		{task.StatusCompleted, []string{"completed", "done", "finished"}},
		{task.StatusInProgress, []string{"in progress", "in-progress", "ongoing", "started"}},
	}

	priorityFilterKeywords = []struct {
		priority task.Priority
		words    []string
	}{
		{task.PriorityHigh, []string{"high priority", "high-priority", "urgent", "critical"}},
		{task.PriorityMedium, []string{"medium priority", "medium-priority"}},
		{task.PriorityLow, []string{"low priority", "low-priority"}},
	}
)

// extractListFilter derives the optional status and priority filters of a
// list request from filter keywords in the message.
func extractListFilter(m string) task.Filter {
	var f task.Filter
	for _, set := range statusFilterKeywords {
		for _, w := range set.words {
			if strings.Contains(m, w) {
				f.Status = set.status
				break
			}
		}
		if f.Status != "" {
			break
		}
	}
	for _, set := range priorityFilterKeywords {
		for _, w := range set.words {
			if strings.Contains(m, w) {
				f.Priority = set.priority
				break
			}
		}
		if f.Priority != "" {
			break
		}
	}
	return f
}
