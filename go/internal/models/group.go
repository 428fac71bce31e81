package models

import (
	"time"
)

// Group represents a named collection of members sharing a set of timers
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Populated on full fetches only
	Members []Member `json:"members,omitempty"`
	Timers  []Timer  `json:"timers,omitempty"`
}

// Member associates an external identity with a group
type Member struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
}

// HasMember reports whether the given member id belongs to the group
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}
