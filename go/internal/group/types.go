package group

import (
	"time"

	"github.com/grouptick/grouptick/go/internal/models"
)

// CreateGroupRequest is the input for creating a group. The caller is always
// added to the membership whether or not it appears in Members.
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// CreateGroupResponse carries the generated group code
type CreateGroupResponse struct {
	GroupID string `json:"group_id"`
}

// MemberView is a membership row with its resolved display name
type MemberView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// GroupView is the full fetch of one group: everything a client needs to
// seed its replica.
type GroupView struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Members []MemberView   `json:"members"`
	Timers  []models.Timer `json:"timers"`
}

// Summary is one row of the caller's group listing
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	TimerCount  int       `json:"timer_count"`
	CreatedAt   time.Time `json:"created_at"`
}
