package model

import "time"

// EmployeeStatus is the employment state of an employee.
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "Active"
	EmployeeResigned   EmployeeStatus = "Resigned"
	EmployeeTerminated EmployeeStatus = "Terminated"
	EmployeeOnLeave    EmployeeStatus = "On Leave"
)

// IsValid reports whether s is a known employee status.
func (s EmployeeStatus) IsValid() bool {
	switch s {
	case EmployeeActive, EmployeeResigned, EmployeeTerminated, EmployeeOnLeave:
		return true
	default:
		return false
	}
}

// Employee is a person assets can be assigned to.
type Employee struct {
	ID         string         `json:"id"`
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Email      string         `json:"email,omitempty"`
	Department string         `json:"department,omitempty"`
	Status     EmployeeStatus `json:"status"`
	UserID     *string        `json:"userId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
