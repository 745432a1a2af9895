package models

// Operator is the signed-in dashboard user driving the controls.
type Operator struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
