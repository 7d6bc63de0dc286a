package models

import "encoding/json"

// User is the profile snapshot returned by the backend and cached locally for
// instant render at startup.
type User struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Username       string `json:"username,omitempty"`
	Bio            string `json:"bio,omitempty"`
	PostsCount     int    `json:"postsCount"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	var raw struct {
		alias
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	u.ID = pickID(u.ID, raw.LegacyID)
	return nil
}

// Credential is the pair of opaque bearer tokens issued at login.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// AuthPayload is the "data" object of a login response: the user profile
// with the issued tokens alongside it.
type AuthPayload struct {
	User         User
	Token        string
	RefreshToken string
}

func (p *AuthPayload) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &p.User); err != nil {
		return err
	}
	var tokens struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(b, &tokens); err != nil {
		return err
	}
	p.Token = tokens.Token
	p.RefreshToken = tokens.RefreshToken
	return nil
}

// Credential returns the tokens carried by the payload.
func (p AuthPayload) Credential() Credential {
	return Credential{AccessToken: p.Token, RefreshToken: p.RefreshToken}
}

// ProfileUpdate is the partial profile accepted by the user update endpoint.
// Nil fields are left unchanged by the server.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

func pickID(id, legacy string) string {
	if id != "" {
		return id
	}
	return legacy
}
