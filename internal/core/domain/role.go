package domain

// Role is the single tier an account belongs to.
type Role string

const (
	RoleRoot      Role = "root"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleStandard  Role = "standard"
)

// Capabilities describes what a role is allowed to do. Policy checks read
// these flags instead of comparing role names.
type Capabilities struct {
	// Privileged roles may hold several live sessions at once.
	Privileged bool
	// BypassesTimeslot exempts the role from window and resource checks.
	BypassesTimeslot bool
	// ManagesAccounts allows creating, disabling, blacklisting and allocating.
	ManagesAccounts bool
}

var roleCapabilities = map[Role]Capabilities{
	RoleRoot:      {Privileged: true, BypassesTimeslot: true, ManagesAccounts: true},
	RoleDeveloper: {Privileged: true, BypassesTimeslot: true, ManagesAccounts: true},
	RoleAdmin:     {Privileged: true, BypassesTimeslot: true, ManagesAccounts: true},
	RoleStandard:  {},
}

// Capabilities returns the capability set of r. Unknown roles get none.
func (r Role) Capabilities() Capabilities {
	return roleCapabilities[r]
}

// Valid reports whether r is one of the known tiers.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// PrivilegedRoles lists the tiers provisioned at bootstrap.
func PrivilegedRoles() []Role {
	return []Role{RoleRoot, RoleDeveloper, RoleAdmin}
}
