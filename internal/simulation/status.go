package simulation

import (
	"fmt"
	"strings"
)

type Status int32

const (
	// Idle means not started yet, or reset
	Idle Status = iota
	// Running means ticking on the configured schedule
	Running
	// Paused means the schedule is suspended, state is retained
	Paused
)

var statusNames = map[Status]string{
	Idle:    "idle",
	Running: "running",
	Paused:  "paused",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status: %s", text)
}
