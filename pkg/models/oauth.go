package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrProviderUnauthorized = errors.New("provider rejected the access token")
	ErrProviderError        = errors.New("provider userinfo request failed")
)

type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`
	Email         string `json:"email"`
	Locale        string `json:"locale"`
	MFAEnabled    bool   `json:"mfa_enabled"`
}

// Tag returns the legacy name#discriminator form, or just the username
// for accounts migrated off discriminators.
func (u *DiscordUser) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

func (u *DiscordUser) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", u.ID, u.Avatar)
}

type GoogleUser struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
	Picture   string `json:"picture"`
}

// GetDiscordUser fetches the authenticated user's Discord profile.
func GetDiscordUser(at string) (*DiscordUser, error) {
	var user DiscordUser
	if err := getUserinfo("https://discord.com/api/users/@me", at, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetGoogleUser fetches the authenticated user's Google profile.
func GetGoogleUser(at string) (*GoogleUser, error) {
	var user GoogleUser
	if err := getUserinfo("https://www.googleapis.com/oauth2/v3/userinfo", at, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func getUserinfo(url, at string, out any) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}

	req.Header.Add("Authorization", "Bearer "+at)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		bdy, _ := io.ReadAll(res.Body)
		fmt.Println("provider responded with non-200 status code:", res.StatusCode, string(bdy))

		if res.StatusCode == http.StatusUnauthorized {
			return ErrProviderUnauthorized
		}

		return ErrProviderError
	}

	return json.NewDecoder(res.Body).Decode(out)
}
