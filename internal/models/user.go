package models

import (
	"fmt"
	"strings"
)

// Role enum
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// ParseRole accepts only the known roles.
func ParseRole(value string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(value))); r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// User is the part of an account the workshop core needs. Registration,
// passwords and profiles live with the identity provider.
type User struct {
	BaseModel
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Role      Role   `gorm:"size:20;default:'customer'" json:"role"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsStaff() bool    { return a.Role == RoleStaff }
func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

// Vehicle belongs to a customer and is the subject of an appointment.
type Vehicle struct {
	BaseModel
	CustomerID  string `gorm:"size:36;index;not null" json:"customerId"`
	Make        string `gorm:"size:100" json:"make"`
	Model       string `gorm:"size:100" json:"model"`
	Year        int    `json:"year"`
	PlateNumber string `gorm:"size:20" json:"plateNumber"`
}
