package common

import "fmt"

// Role is closed: every policy decision switches over all five values.
type Role string

const (
	Admin    Role = "admin"
	LabStaff Role = "lab_staff"
	Product  Role = "product"
	Account  Role = "account"
	AllUsers Role = "all_users"
)

var Roles = []Role{Admin, LabStaff, Product, Account, AllUsers}

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case Admin, LabStaff, Product, Account, AllUsers:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
