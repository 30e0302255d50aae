package domain

// Role is the managed role of a node, derived from its tags.
type Role int

const (
	RoleUnclassified Role = iota // neither managed nor text
	RolePlainText                // untagged text layer, ready to be managed
	RoleRoot                     // managed group
	RoleText                     // managed text child
	RoleOutline                  // managed outline child
)

func (r Role) String() string {
	switch r {
	case RoleUnclassified:
		return "unclassified"
	case RolePlainText:
		return "plain-text"
	case RoleRoot:
		return "managed-root"
	case RoleText:
		return "managed-text"
	case RoleOutline:
		return "managed-outline"
	default:
		return "unknown"
	}
}

// IsManaged reports whether the role belongs to a managed group.
func (r Role) IsManaged() bool {
	return r == RoleRoot || r == RoleText || r == RoleOutline
}
