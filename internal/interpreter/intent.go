package interpreter

import "strings"

// Intent is the category of task operation a message requests.
type Intent string

const (
	IntentAdd          Intent = "add"
	IntentList         Intent = "list"
	IntentUpdate       Intent = "update"
	IntentComplete     Intent = "complete"
	IntentDelete       Intent = "delete"
	IntentCount        Intent = "count"
	IntentUnrecognized Intent = "unrecognized"
)

// intentKeywords is evaluated in order; the first set with a member present
// in the message wins. The order is load-bearing: messages often contain
// words from several sets ("show completed tasks") and earlier sets take
// precedence.
var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentAdd, []string{"add", "create", "make", "new", "schedule", "put", "plan"}},
	{IntentList, []string{"what", "show", "list", "display", "see", "my", "view", "get"}},
	{IntentUpdate, []string{"update", "change", "modify", "edit", "adjust", "alter"}},
	{IntentComplete, []string{"complete", "finish", "done", "mark", "accomplish", "achieve"}},
	{IntentDelete, []string{"delete", "remove", "cancel", "erase", "eliminate"}},
}

// Classify returns the intent of a message. The count intent is a
// conjunctive special case ("how many" together with "task") checked before
// the keyword cascade and dominating it. Matching is plain substring
// containment on the lowercased message.
func Classify(message string) Intent {
	m := strings.ToLower(message)
	if strings.Contains(m, "how many") && strings.Contains(m, "task") {
		return IntentCount
	}
	for _, set := range intentKeywords {
		for _, w := range set.words {
			if strings.Contains(m, w) {
				return set.intent
			}
		}
	}
	return IntentUnrecognized
}

// IsTaskCommand reports whether the message looks like a task operation at
// all. Messages that are not are handed to the conversational AI fallback.
func IsTaskCommand(message string) bool {
	return Classify(message) != IntentUnrecognized
}
