package group

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/apperr"
	"github.com/grouptick/grouptick/go/internal/ids"
	"github.com/grouptick/grouptick/go/internal/models"
)

type fakeGroupRepo struct {
	groups  map[string]*models.Group
	byName  map[string]bool
	created [][]string
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups: make(map[string]*models.Group),
		byName: make(map[string]bool),
	}
}

func (r *fakeGroupRepo) CreateGroup(ctx context.Context, g *models.Group, memberIDs []string) error {
	if r.byName[g.Name] {
		return fmt.Errorf("group name %q: %w", g.Name, apperr.ErrConflict)
	}
	r.byName[g.Name] = true
	cp := *g
	for _, id := range memberIDs {
		cp.Members = append(cp.Members, models.Member{ID: id, GroupID: g.ID})
	}
	r.groups[g.ID] = &cp
	r.created = append(r.created, memberIDs)
	return nil
}

func (r *fakeGroupRepo) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, apperr.ErrNotFound)
	}
	return g, nil
}

func (r *fakeGroupRepo) ListGroupsForMember(ctx context.Context, memberID string) ([]Summary, error) {
	var out []Summary
	for _, g := range r.groups {
		if g.HasMember(memberID) {
			out = append(out, Summary{ID: g.ID, Name: g.Name, MemberCount: len(g.Members)})
		}
	}
	return out, nil
}

type fakeTimerLister struct {
	timers []models.Timer
	err    error
}

func (l *fakeTimerLister) ListTimersForGroup(ctx context.Context, groupID string) ([]models.Timer, error) {
	return l.timers, l.err
}

func testResolver() identity.Resolver {
	return &identity.StaticResolver{Identities: []identity.Identity{
		{ID: "alice", DisplayName: "Alice"},
		{ID: "bob", DisplayName: "Bob"},
		{ID: "carol", DisplayName: "Carol"},
	}}
}

func TestCreateGroupDedupesAndIncludesCaller(t *testing.T) {
	repo := newFakeGroupRepo()
	app := NewApp(repo, &fakeTimerLister{}, testResolver())

	g, err := app.CreateGroup(context.Background(), "alice", CreateGroupRequest{
		Name:    "study hall",
		Members: []string{"bob", "bob", "alice", "carol"},
	})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if len(g.ID) != ids.CodeLength {
		t.Errorf("group id %q has wrong length", g.ID)
	}

	want := []string{"bob", "alice", "carol"}
	got := repo.created[0]
	if len(got) != len(want) {
		t.Fatalf("members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("members = %v, want %v", got, want)
		}
	}
}

func TestCreateGroupCallerOnly(t *testing.T) {
	repo := newFakeGroupRepo()
	app := NewApp(repo, &fakeTimerLister{}, testResolver())

	g, err := app.CreateGroup(context.Background(), "alice", CreateGroupRequest{Name: "solo"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if len(g.Members) != 1 || g.Members[0].ID != "alice" {
		t.Errorf("members = %+v, want just the caller", g.Members)
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	app := NewApp(newFakeGroupRepo(), &fakeTimerLister{}, testResolver())

	_, err := app.CreateGroup(context.Background(), "alice", CreateGroupRequest{})
	if !apperr.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestCreateGroupUnknownMember(t *testing.T) {
	app := NewApp(newFakeGroupRepo(), &fakeTimerLister{}, testResolver())

	_, err := app.CreateGroup(context.Background(), "alice", CreateGroupRequest{
		Name:    "study hall",
		Members: []string{"bob", "nobody"},
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestCreateGroupDuplicateName(t *testing.T) {
	repo := newFakeGroupRepo()
	app := NewApp(repo, &fakeTimerLister{}, testResolver())
	ctx := context.Background()

	if _, err := app.CreateGroup(ctx, "alice", CreateGroupRequest{Name: "study hall"}); err != nil {
		t.Fatal(err)
	}
	_, err := app.CreateGroup(ctx, "bob", CreateGroupRequest{Name: "study hall"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestGetGroupView(t *testing.T) {
	repo := newFakeGroupRepo()
	timers := &fakeTimerLister{timers: []models.Timer{
		{ID: "TIMER0000001", Label: "standup", LengthSec: 300, StartsAt: time.Now().UTC()},
	}}
	app := NewApp(repo, timers, testResolver())
	ctx := context.Background()

	g, err := app.CreateGroup(ctx, "alice", CreateGroupRequest{Name: "study hall", Members: []string{"bob"}})
	if err != nil {
		t.Fatal(err)
	}

	view, err := app.GetGroupView(ctx, "alice", g.ID)
	if err != nil {
		t.Fatalf("GetGroupView: %v", err)
	}
	if view.Name != "study hall" || len(view.Timers) != 1 {
		t.Errorf("view = %+v", view)
	}
	names := make(map[string]string)
	for _, m := range view.Members {
		names[m.ID] = m.DisplayName
	}
	if names["alice"] != "Alice" || names["bob"] != "Bob" {
		t.Errorf("display names = %v", names)
	}
}

func TestGetGroupViewForbiddenForNonMember(t *testing.T) {
	repo := newFakeGroupRepo()
	app := NewApp(repo, &fakeTimerLister{}, testResolver())
	ctx := context.Background()

	g, err := app.CreateGroup(ctx, "alice", CreateGroupRequest{Name: "study hall"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = app.GetGroupView(ctx, "bob", g.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestGetGroupViewNotFound(t *testing.T) {
	app := NewApp(newFakeGroupRepo(), &fakeTimerLister{}, testResolver())

	_, err := app.GetGroupView(context.Background(), "alice", "NOSUCHGROUP1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
