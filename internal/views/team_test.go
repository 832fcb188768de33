package views_test

import (
	"context"
	"errors"
	"testing"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/isdelr/teamup-web/internal/views"
)

var ownerTeam = []models.TeamMembership{
	{UserID: "1", Role: models.OwnerRole},
	{UserID: "2", Role: "Dev"},
}

func TestIsTeamOwner(t *testing.T) {
	if !views.IsTeamOwner(ownerTeam, "1") {
		t.Error("viewer 1 should own the team")
	}
	if views.IsTeamOwner(ownerTeam, "2") {
		t.Error("viewer 2 should not own the team")
	}
	if views.IsTeamOwner(ownerTeam, "") {
		t.Error("anonymous viewer should not own the team")
	}
}

func TestCanRemoveMember(t *testing.T) {
	owner, dev := ownerTeam[0], ownerTeam[1]
	tests := []struct {
		name   string
		viewer models.ID
		target models.TeamMembership
		want   bool
	}{
		{"owner removes dev", "1", dev, true},
		{"owner removes self", "1", owner, false},
		{"dev removes owner", "2", owner, false},
		{"dev removes dev", "2", dev, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := views.CanRemoveMember(ownerTeam, tt.viewer, tt.target); got != tt.want {
				t.Errorf("CanRemoveMember = %v, want %v", got, tt.want)
			}
		})
	}
}

func newTeam(t *testing.T, viewer *models.User) (*views.Team, *fixture) {
	t.Helper()
	f := newFixture(viewer)
	f.team.members = append([]models.TeamMembership(nil), ownerTeam...)
	f.team.comments = []models.Comment{
		{ID: "c1", UserID: "2", Content: "hello"},
		{ID: "c2", UserID: "3", Content: "hi"},
	}
	team := views.NewTeam(f.env, "42")
	if err := team.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return team, f
}

func TestTeam_RemoveMember(t *testing.T) {
	ctx := context.Background()
	team, f := newTeam(t, &models.User{ID: "1"})

	if err := team.RemoveMember(ctx, "2", false); !errors.Is(err, views.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed err = %v", err)
	}
	if err := team.RemoveMember(ctx, "1", true); !errors.Is(err, views.ErrForbidden) {
		t.Fatalf("removing owner err = %v", err)
	}
	if err := team.RemoveMember(ctx, "2", true); err != nil {
		t.Fatal(err)
	}
	if got := len(team.View().Members); got != 1 {
		t.Errorf("members = %d, want 1", got)
	}
	if n := len(f.team.calls); f.team.calls[n-1] != "remove" {
		t.Errorf("calls = %v", f.team.calls)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].action != views.ActionMemberRemoved {
		t.Errorf("notifications = %v", f.notifier.sent)
	}
}

func TestTeam_NonOwnerCannotRemove(t *testing.T) {
	team, f := newTeam(t, &models.User{ID: "2"})
	if err := team.RemoveMember(context.Background(), "2", true); !errors.Is(err, views.ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
	for _, c := range f.team.calls {
		if c == "remove" {
			t.Fatal("remove called")
		}
	}
}

func TestTeam_CommentPermissions(t *testing.T) {
	tests := []struct {
		name    string
		viewer  models.ID
		comment models.ID
		allowed bool
	}{
		{"author", "2", "c1", true},
		{"owner deletes other", "1", "c2", true},
		{"stranger", "2", "c2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, f := newTeam(t, &models.User{ID: tt.viewer})
			err := team.DeleteComment(context.Background(), tt.comment)
			if tt.allowed && err != nil {
				t.Fatalf("err = %v", err)
			}
			if !tt.allowed && !errors.Is(err, views.ErrForbidden) {
				t.Fatalf("err = %v, want ErrForbidden", err)
			}
			if tt.allowed && len(f.notifier.sent) != 1 {
				t.Errorf("notifications = %v", f.notifier.sent)
			}
		})
	}
}

func TestTeam_AddComment(t *testing.T) {
	ctx := context.Background()
	team, f := newTeam(t, &models.User{ID: "2", Username: "dev"})

	if _, err := team.AddComment(ctx, "   "); err == nil {
		t.Fatal("empty comment accepted")
	}
	c, err := team.AddComment(ctx, " ship it ")
	if err != nil {
		t.Fatal(err)
	}
	if c.Content != "ship it" || c.UserID != "2" || !c.CanDelete {
		t.Errorf("comment = %+v", c)
	}
	if got := len(team.View().Comments); got != 3 {
		t.Errorf("comments = %d, want 3", got)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].projectID != "42" {
		t.Errorf("notifications = %v", f.notifier.sent)
	}
}

func TestTeam_CommentsFailureKeepsMembers(t *testing.T) {
	f := newFixture(&models.User{ID: "1"})
	f.team.members = ownerTeam
	f.team.commentsErr = errBackend
	team := views.NewTeam(f.env, "42")
	if err := team.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := team.View()
	if v.Status != views.StatusReady || len(v.Members) != 2 || v.ActionError == "" {
		t.Errorf("view = %+v", v)
	}
}

func TestTeam_RequiresSignIn(t *testing.T) {
	f := newFixture(nil)
	team := views.NewTeam(f.env, "42")
	if err := team.Load(context.Background()); !errors.Is(err, views.ErrAuthRequired) {
		t.Fatalf("err = %v", err)
	}
	if len(f.team.calls) != 0 {
		t.Errorf("calls = %v", f.team.calls)
	}
}
