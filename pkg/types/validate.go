package types

import "unicode/utf8"

// Name length bounds, in characters.
const (
	MinNameLength = 1
	MaxNameLength = 100
)

// Validation texts shown to the user.
const (
	TextListNameLength = "List name must be between 1 and 100 characters."
	TextListNameUnique = "List name must be unique."
	TextTodoNameLength = "Todo name must be between 1 and 100 characters."
)

// ValidateListName returns a *ValidationError when candidate is not between
// 1 and 100 characters or equals (case-sensitively) one of existing.
func ValidateListName(candidate string, existing []string) error {
	if !validLength(candidate) {
		return &ValidationError{Text: TextListNameLength}
	}
	for _, name := range existing {
		if name == candidate {
			return &ValidationError{Text: TextListNameUnique}
		}
	}
	return nil
}

// ValidateTodoName returns a *ValidationError when candidate is not between
// 1 and 100 characters.
func ValidateTodoName(candidate string) error {
	if !validLength(candidate) {
		return &ValidationError{Text: TextTodoNameLength}
	}
	return nil
}

func validLength(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= MinNameLength && n <= MaxNameLength
}
