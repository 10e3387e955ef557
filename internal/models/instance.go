package models

import "fmt"

// Instance is a read-only view of one node in the pathway knowledge graph.
type Instance struct {
	DBID        int64  `json:"db_id"`
	Class       string `json:"class"`
	DisplayName string `json:"display_name"`
}

// IsA returns true if the instance's schema class is ancestor or one of its subclasses.
func (i Instance) IsA(ancestor string) bool {
	return IsA(i.Class, ancestor)
}

// String renders the instance the way curators refer to it in logs: [Class:dbId] name.
func (i Instance) String() string {
	return fmt.Sprintf("[%s:%d] %s", i.Class, i.DBID, i.DisplayName)
}

// Value is a single attribute value: either a reference to another instance or a scalar.
type Value struct {
	Instance *Instance `json:"instance,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// IsInstance returns true if the value references another instance.
func (v Value) IsInstance() bool {
	return v.Instance != nil
}

// String returns the scalar text, or the referenced instance's display name.
func (v Value) String() string {
	if v.Instance != nil {
		return v.Instance.DisplayName
	}
	return v.Text
}

// Ref wraps an instance as an attribute value.
func Ref(inst Instance) Value {
	return Value{Instance: &inst}
}

// Scalar wraps text as an attribute value.
func Scalar(text string) Value {
	return Value{Text: text}
}
