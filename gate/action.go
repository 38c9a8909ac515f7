package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Moderation actions used by the approval gates.
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionModerate Action = "moderate"
)

// IsModeration reports whether a is one of the admin decision actions.
func (a Action) IsModeration() bool {
	switch a {
	case ActionApprove, ActionReject, ActionModerate:
		return true
	}
	return false
}
