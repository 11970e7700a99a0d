package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/notice"
)

const (
	msgProfileLoadFailed = "Failed to load profile"
	msgProfileUpdated    = "Profile updated successfully"
	msgProfileFailed     = "Failed to update profile"
)

type ProfileGateway interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error)
	GetRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
	UpdateProfileName(ctx context.Context, id uuid.UUID, fullName string) error
}

// ProfilePage is the signed-in user's profile. Only the full name can be
// changed from here.
type ProfilePage struct {
	Profile *model.Profile
	Team    *model.Team
	Role    model.Role

	gw      ProfileGateway
	notices notice.Sink
	userID  uuid.UUID
}

func NewProfilePage(gw ProfileGateway, notices notice.Sink, userID uuid.UUID) *ProfilePage {
	return &ProfilePage{gw: gw, notices: notices, userID: userID, Role: model.RoleMember}
}

// Load reads the profile, then its team and the user's role. Team and role
// failures fall back to no team and member.
func (p *ProfilePage) Load(ctx context.Context) error {
	profile, err := p.gw.GetProfile(ctx, p.userID)
	if err != nil {
		p.notices.Error(msgProfileLoadFailed)
		return err
	}
	p.Profile = profile

	p.Team = nil
	if profile.TeamID != nil {
		if team, err := p.gw.GetTeam(ctx, *profile.TeamID); err == nil {
			p.Team = team
		}
	}

	p.Role = model.RoleMember
	if role, err := p.gw.GetRole(ctx, p.userID); err == nil && role != "" {
		p.Role = role
	}
	return nil
}

// Save writes the full name and reloads the page.
func (p *ProfilePage) Save(ctx context.Context, fullName string) error {
	if err := p.gw.UpdateProfileName(ctx, p.userID, fullName); err != nil {
		p.notices.Error(msgProfileFailed)
		return err
	}
	p.notices.Success(msgProfileUpdated)
	return p.Load(ctx)
}

func (p *ProfilePage) DisplayName() string {
	if p.Profile != nil && p.Profile.FullName != nil && *p.Profile.FullName != "" {
		return *p.Profile.FullName
	}
	return "User"
}

func (p *ProfilePage) RoleLabel() string {
	return capitalize(string(p.Role))
}

// AvatarInitial is shown when there is no avatar image.
func (p *ProfilePage) AvatarInitial() string {
	if p.Profile != nil {
		if p.Profile.FullName != nil {
			if r, ok := firstRune(*p.Profile.FullName); ok {
				return string(r)
			}
		}
		if r, ok := firstRune(p.Profile.Email); ok {
			return string(r)
		}
	}
	return "U"
}

func (p *ProfilePage) Render(w io.Writer) error {
	if p.Profile == nil {
		return errors.New("profile not loaded")
	}
	avatar := p.AvatarInitial()
	if p.Profile.AvatarURL != nil && *p.Profile.AvatarURL != "" {
		avatar = *p.Profile.AvatarURL
	}
	team := "No team assigned"
	if p.Team != nil {
		team = p.Team.Name
	}
	_, err := fmt.Fprintf(w, "%s\n  Avatar: %s\n  Email:  %s\n  Team:   %s\n  Role:   %s\n",
		p.DisplayName(), avatar, p.Profile.Email, team, p.RoleLabel())
	return err
}

func firstRune(s string) (rune, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

func capitalize(s string) string {
	r, ok := firstRune(s)
	if !ok {
		return s
	}
	s = strings.TrimSpace(s)
	return string(unicode.ToUpper(r)) + s[utf8.RuneLen(r):]
}
