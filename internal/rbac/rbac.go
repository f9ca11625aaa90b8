// Package rbac resolves a user's effective permissions from their assigned
// role labels. Privileges accumulate across roles; no role supersedes
// another, and roles never expire.
package rbac

import (
	"strings"
)

// Role is a closed enum of role labels.
type Role string

const (
	ITAdmin            Role = "IT Admin"
	Direction          Role = "Direction"
	SupplyChainManager Role = "Supply Chain Manager"
	Logistician        Role = "Logistician"
	Verificator        Role = "Verificator"
)

// ValidRoles lists every role the system knows about.
var ValidRoles = []Role{ITAdmin, Direction, SupplyChainManager, Logistician, Verificator}

// IsValidRole reports whether label is a canonical role label.
func IsValidRole(label string) bool {
	for _, r := range ValidRoles {
		if string(r) == label {
			return true
		}
	}
	return false
}

// ValidateLabels checks that every label is canonical and the list is
// non-empty.
func ValidateLabels(labels []string) bool {
	if len(labels) == 0 {
		return false
	}
	for _, l := range labels {
		if !IsValidRole(l) {
			return false
		}
	}
	return true
}

// Normalize converts stored role strings into discrete roles. Legacy data
// sometimes packs several labels into one entry ("IT Admin, Supply Chain
// Manager"); those are split apart. Unknown labels are dropped, duplicates
// collapsed.
func Normalize(stored []string) []Role {
	seen := make(map[Role]bool, len(stored))
	out := make([]Role, 0, len(stored))
	for _, entry := range stored {
		for _, part := range strings.Split(entry, ",") {
			label := strings.TrimSpace(part)
			if !IsValidRole(label) {
				continue
			}
			r := Role(label)
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// HasRole reports whether the stored roles include target.
func HasRole(stored []string, target Role) bool {
	for _, r := range Normalize(stored) {
		if r == target {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the stored roles include at least one target.
func HasAnyRole(stored []string, targets ...Role) bool {
	for _, t := range targets {
		if HasRole(stored, t) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the stored roles include every target.
func HasAllRoles(stored []string, targets ...Role) bool {
	for _, t := range targets {
		if !HasRole(stored, t) {
			return false
		}
	}
	return true
}

// IsAdmin reports whether the user is an IT Admin.
func IsAdmin(stored []string) bool {
	return HasRole(stored, ITAdmin)
}

// IsManager reports whether the user is a Supply Chain Manager.
func IsManager(stored []string) bool {
	return HasRole(stored, SupplyChainManager)
}

// CanManage reports whether the user holds management privileges
// (IT Admin or Supply Chain Manager).
func CanManage(stored []string) bool {
	return HasAnyRole(stored, ITAdmin, SupplyChainManager)
}
