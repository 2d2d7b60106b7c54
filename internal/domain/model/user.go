package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// User mirrors the identity record kept in sync with the external auth
// provider. Credentials never live here.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	GithubURL string    `json:"github_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserPreferences struct {
	UserID              string `json:"user_id"`
	Theme               string `json:"theme"`
	HideFromLeaderboard bool   `json:"hide_from_leaderboard"`
}

func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:              userID,
		Theme:               ThemeLight,
		HideFromLeaderboard: false,
	}
}

// PlatformUsernames stores a user's external handles, used as the default
// source for imports.
type PlatformUsernames struct {
	UserID             string    `json:"user_id"`
	CodeforcesUsername string    `json:"codeforces_username,omitempty"`
	KattisUsername     string    `json:"kattis_username,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *PlatformUsernames) ForPlatform(platform Platform) string {
	switch platform {
	case PlatformCodeforces:
		return p.CodeforcesUsername
	case PlatformKattis:
		return p.KattisUsername
	}
	return ""
}
