// Package instanceid identifies the running process in logs and cache descriptions.
package instanceid

import (
	"github.com/google/uuid"
)

const shortLen = 8

// nolint:gochecknoglobals
var instanceID = uuid.New()

// ID returns the process wide instance id
func ID() uuid.UUID {
	return instanceID
}

// String instanceid representation as string
func String() string {
	return instanceID.String()
}

// Short returns the first characters of the instance id, enough to tell instances apart in logs
func Short() string {
	return String()[:shortLen]
}
