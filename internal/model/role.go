package model

import "github.com/google/uuid"

type Role string

const (
	RoleSuperAdmin          Role = "super_admin"
	RoleRector              Role = "rector"
	RoleAccountant          Role = "accountant"
	RoleAuxiliaryAccountant Role = "auxiliary_accountant"
)

var AllRoles = []Role{RoleSuperAdmin, RoleRector, RoleAccountant, RoleAuxiliaryAccountant}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Permission string

const (
	PermManageInstitutions Permission = "manage_institutions"
	PermManageUsers        Permission = "manage_users"
	PermWriteStudents      Permission = "write_students"
	PermDeleteStudents     Permission = "delete_students"
	PermManageEvents       Permission = "manage_events"
	PermRecordPayments     Permission = "record_payments"
	PermRefundPayments     Permission = "refund_payments"
	PermManageFinance      Permission = "manage_finance"
)

var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermManageInstitutions, PermManageUsers, PermWriteStudents, PermDeleteStudents,
		PermManageEvents, PermRecordPayments, PermRefundPayments, PermManageFinance,
	},
	RoleRector: {
		PermManageUsers, PermWriteStudents, PermDeleteStudents,
		PermManageEvents, PermRecordPayments, PermRefundPayments, PermManageFinance,
	},
	RoleAccountant: {
		PermWriteStudents, PermDeleteStudents,
		PermManageEvents, PermRecordPayments, PermRefundPayments, PermManageFinance,
	},
	// Bookkeeping only: record payments and maintain the roster.
	RoleAuxiliaryAccountant: {
		PermWriteStudents, PermRecordPayments,
	},
}

// Can reports whether the role grants perm.
func (r Role) Can(perm Permission) bool {
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}

// CanAssign reports whether a user with role r may create or edit a user
// holding target. Rectors only manage the accounting staff of their school.
func (r Role) CanAssign(target Role) bool {
	switch r {
	case RoleSuperAdmin:
		return target.Valid()
	case RoleRector:
		return target == RoleAccountant || target == RoleAuxiliaryAccountant
	default:
		return false
	}
}

// Principal is the authenticated caller, decoded from the access token.
type Principal struct {
	UserID        uuid.UUID  `json:"user_id"`
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
	Role          Role       `json:"role"`
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// CanAccessInstitution is true for super admins and members of id.
func (p Principal) CanAccessInstitution(id uuid.UUID) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.InstitutionID != nil && *p.InstitutionID == id
}
