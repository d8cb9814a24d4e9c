package filter

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
)

// maxSuggestDistance bounds how far a typo may be from a suggested choice.
const maxSuggestDistance = 3

// ParseChoice resolves operator input against the allowed values of a structured
// filter. Matching is case-insensitive; empty input and "all" resolve to All. An
// unknown value yields an error that suggests the closest allowed value.
func ParseChoice(input string, choices []string) (string, error) {
	want := strings.ToUpper(strings.TrimSpace(input))
	if want == "" || want == All {
		return All, nil
	}
	for _, choice := range choices {
		if choice == want {
			return choice, nil
		}
	}

	if suggestion := closest(want, choices); suggestion != "" {
		return "", fmt.Errorf("%w: %q is not one of %s (did you mean %s?)",
			common.ErrInvalidInput, input, strings.Join(choices, ", "), suggestion)
	}
	return "", fmt.Errorf("%w: %q is not one of %s", common.ErrInvalidInput, input, strings.Join(choices, ", "))
}

func closest(input string, choices []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, choice := range choices {
		if d := levenshtein.ComputeDistance(input, choice); d < bestDist {
			best, bestDist = choice, d
		}
	}
	return best
}

// CaseStatusChoices are the values accepted by CaseCriteria.Status.
func CaseStatusChoices() []string {
	out := make([]string, len(model.CaseStatuses))
	for i, status := range model.CaseStatuses {
		out[i] = string(status)
	}
	return out
}

// NotificationStatusChoices are the values accepted by NotificationCriteria.Status.
func NotificationStatusChoices() []string {
	return []string{model.NotificationPending, model.NotificationSent, model.NotificationFailed}
}

// ChannelChoices are the values accepted by NotificationCriteria.Channel.
func ChannelChoices() []string {
	return []string{model.ChannelEmail, model.ChannelSMS}
}
