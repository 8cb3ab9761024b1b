package domain

import "fmt"

// Role is a named capability bucket controlling which identities may call
// privileged operations.
type Role uint8

const (
	// RoleAdmin is the root role. It governs every other role and is the
	// only role transferred through the two-phase admin handover.
	RoleAdmin Role = iota
	// RoleSetter may mutate allow-lists, commitment roots, settings and
	// vault configuration.
	RoleSetter
	// RoleNoLimitTransfer bypasses quota enforcement entirely.
	RoleNoLimitTransfer
	// RoleSmallAmountTransfer may use the quota-checked small-amount path.
	RoleSmallAmountTransfer
)

var roleNames = map[Role]string{
	RoleAdmin:               "ADMIN",
	RoleSetter:              "SETTER",
	RoleNoLimitTransfer:     "NO_LIMIT_TRANSFER",
	RoleSmallAmountTransfer: "SMALL_AMOUNT_TRANSFER",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ROLE(%d)", uint8(r))
}

// ParseRole maps a symbolic role name back to its Role value.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// AllRoles lists every defined role in governance order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSetter, RoleNoLimitTransfer, RoleSmallAmountTransfer}
}
