package domain

// Operation identifies an action subject to role-based access control.
type Operation string

const (
	OpUploadFile   Operation = "upload_file"
	OpListFiles    Operation = "list_files"
	OpDownloadFile Operation = "download_file"
)

// rolePermissions maps each role to the operations it may perform.
// Authentication itself is open to every role.
var rolePermissions = map[string][]Operation{
	RoleOps:    {OpUploadFile},
	RoleClient: {OpListFiles, OpDownloadFile},
}

// RoleCan reports whether role is allowed to perform op. Unknown roles and
// unknown operations are denied.
func RoleCan(role string, op Operation) bool {
	for _, allowed := range rolePermissions[role] {
		if allowed == op {
			return true
		}
	}
	return false
}

// RolesAllowed returns every role permitted to perform op, for use by the
// RBAC middleware when guarding a route.
func RolesAllowed(op Operation) []string {
	var roles []string
	for role, ops := range rolePermissions {
		for _, allowed := range ops {
			if allowed == op {
				roles = append(roles, role)
				break
			}
		}
	}
	return roles
}
