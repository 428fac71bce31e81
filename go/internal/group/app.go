package group

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/apperr"
	"github.com/grouptick/grouptick/go/internal/ids"
	"github.com/grouptick/grouptick/go/internal/models"
)

// GroupRepository defines what the group app layer needs from the repository
type GroupRepository interface {
	CreateGroup(ctx context.Context, g *models.Group, memberIDs []string) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroupsForMember(ctx context.Context, memberID string) ([]Summary, error)
}

// TimerLister defines what the group app needs from the timer store for
// full fetches.
type TimerLister interface {
	ListTimersForGroup(ctx context.Context, groupID string) ([]models.Timer, error)
}

// App handles group business logic
type App struct {
	repo     GroupRepository
	timers   TimerLister
	resolver identity.Resolver
}

// NewApp creates a new group App
func NewApp(repo GroupRepository, timers TimerLister, resolver identity.Resolver) *App {
	return &App{
		repo:     repo,
		timers:   timers,
		resolver: resolver,
	}
}

// CreateGroup creates a group owned by the caller. The caller is always part
// of the membership; requested members are deduplicated and must all resolve
// against the identity provider.
func (a *App) CreateGroup(ctx context.Context, callerID string, req CreateGroupRequest) (*models.Group, error) {
	if req.Name == "" {
		return nil, apperr.NewValidation("name", "name is required")
	}

	memberIDs := dedupeWithCaller(req.Members, callerID)

	known, err := a.resolver.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	knownIDs := make(map[string]bool, len(known))
	for _, id := range known {
		knownIDs[id.ID] = true
	}
	for _, memberID := range memberIDs {
		if !knownIDs[memberID] {
			return nil, apperr.NewValidation("members", fmt.Sprintf("member %s does not exist", memberID))
		}
	}

	g := &models.Group{
		ID:   ids.NewCode(),
		Name: req.Name,
	}
	if err := a.repo.CreateGroup(ctx, g, memberIDs); err != nil {
		return nil, err
	}

	for _, memberID := range memberIDs {
		g.Members = append(g.Members, models.Member{ID: memberID, GroupID: g.ID})
	}

	log.Info().
		Str("group_id", g.ID).
		Str("name", g.Name).
		Int("members", len(memberIDs)).
		Msg("group created")

	return g, nil
}

// GetGroupView performs the full fetch that seeds a client replica: the
// group, its members with resolved display names, and its timers ordered by
// start instant.
func (a *App) GetGroupView(ctx context.Context, callerID, groupID string) (*GroupView, error) {
	g, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(callerID) {
		return nil, fmt.Errorf("member %s is not in group %s: %w", callerID, groupID, apperr.ErrForbidden)
	}

	timers, err := a.timers.ListTimersForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	view := &GroupView{
		ID:     g.ID,
		Name:   g.Name,
		Timers: timers,
	}

	names := make(map[string]string)
	if known, err := a.resolver.ListIdentities(ctx); err != nil {
		// Display names are cosmetic; serve ids rather than failing the fetch
		log.Warn().Err(err).Msg("failed to resolve member display names")
	} else {
		for _, id := range known {
			names[id.ID] = id.DisplayName
		}
	}
	for _, m := range g.Members {
		name, ok := names[m.ID]
		if !ok {
			name = "Unknown"
		}
		view.Members = append(view.Members, MemberView{ID: m.ID, DisplayName: name})
	}

	return view, nil
}

// ListGroups lists the groups the caller belongs to
func (a *App) ListGroups(ctx context.Context, callerID string) ([]Summary, error) {
	return a.repo.ListGroupsForMember(ctx, callerID)
}

// dedupeWithCaller returns members with duplicates removed and the caller
// included, preserving first-seen order.
func dedupeWithCaller(members []string, callerID string) []string {
	seen := make(map[string]bool, len(members)+1)
	out := make([]string, 0, len(members)+1)
	for _, m := range append(members, callerID) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
