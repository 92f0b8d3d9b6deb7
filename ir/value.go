package ir

import "fmt"

// Value is a compiled value: its result ID and the ID of its type.
type Value struct {
	ID   ID
	Type ID
}

// IsValid reports whether v names an emitted value.
func (v Value) IsValid() bool {
	return v.ID != NoID
}

func (v Value) String() string {
	return fmt.Sprintf("%%%d: %%%d", v.ID, v.Type)
}
