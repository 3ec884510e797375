package domain

// Authorization namespaces. A confirmer is not automatically a resolver, and
// vice versa; each set is owner-mutated independently.
const (
	RoleConfirmer = "confirmer"
	RoleResolver  = "resolver"
)

func IsKnownRole(role string) bool {
	return role == RoleConfirmer || role == RoleResolver
}
