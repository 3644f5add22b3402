package uuid

import guuid "github.com/google/uuid"

// UUID is the string id type shared by every entity in the engine.
type UUID string

func New() UUID {
	return UUID(guuid.NewString())
}

func (u UUID) String() string {
	return string(u)
}

// Valid reports whether u parses as an RFC 4122 UUID.
func Valid(s string) bool {
	_, err := guuid.Parse(s)
	return err == nil
}
