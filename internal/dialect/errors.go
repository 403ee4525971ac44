package dialect

import "fmt"

// TableNotFound is returned when generated SQL references a table
// that was never registered with the engine, grounded on the spec's
// explicit TableNotFound(name, available) requirement.
type TableNotFound struct {
	Name      string
	Available []string
}

func (e *TableNotFound) Error() string {
	return fmt.Sprintf("table %q not found; available: %v", e.Name, e.Available)
}
