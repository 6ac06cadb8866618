package cli

import "fmt"

// RemoveTarget selects what the remove command deletes. It implements pflag.Value.
type RemoveTarget string

const (
	RemoveSubject  RemoveTarget = "subject"
	RemoveSubtopic RemoveTarget = "subtopic"
)

func (t *RemoveTarget) String() string {
	return string(*t)
}

func (t *RemoveTarget) Set(value string) error {
	switch RemoveTarget(value) {
	case RemoveSubject, RemoveSubtopic:
		*t = RemoveTarget(value)
		return nil
	default:
		return fmt.Errorf("must be %q or %q, got %q", RemoveSubject, RemoveSubtopic, value)
	}
}

func (t *RemoveTarget) Type() string {
	return "target"
}
