package mutate

import "fmt"

// NotFoundError is returned when an action names a record that is not in the
// hydrated list.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
