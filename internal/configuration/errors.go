package configuration

import (
	"fmt"
	"strings"
)

type UnknownSimulationError struct {
	ID        string
	Available []string
}

func (e *UnknownSimulationError) Error() string {
	return fmt.Sprintf("no simulation with id found: %s, options: %s", e.ID, strings.Join(e.Available, ", "))
}
