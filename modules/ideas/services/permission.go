package services

import (
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
)

// Capabilities checked by the workflow. Edit subsumes suggest.
const (
	CapabilitySuggest = "suggest"
	CapabilityEdit    = "edit"
)

// CanAct answers "may this user perform the capability on the idea",
// evaluated purely from already-loaded state: the idea's authorship and
// the user's collaborator record (nil when none exists).
//
// Authors hold every capability. Active collaborators hold capabilities
// up to their permission level. Pending or removed collaborators hold
// nothing.
func CanAct(userID uint, entity *idea.Idea, collaborator *collaboration.Collaborator, capability string) bool {
	if entity == nil {
		return false
	}
	if entity.IsAuthor(userID) {
		return true
	}
	if collaborator == nil || collaborator.UserID != userID || collaborator.IdeaID != entity.ID {
		return false
	}
	if !collaborator.IsActive() {
		return false
	}

	switch capability {
	case CapabilitySuggest:
		return collaborator.Permission == collaboration.PermissionSuggest ||
			collaborator.Permission == collaboration.PermissionEdit
	case CapabilityEdit:
		return collaborator.Permission == collaboration.PermissionEdit
	default:
		return false
	}
}
