package arcablock

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
)

// Login performs the two-step login: fetch the login form for its anti-forgery
// token, then submit the credentials. The success redirect is not followed.
// The session is verified afterwards, since the site does not flag bad
// credentials on the POST itself.
func (s *Session) Login(username, password string) error {
	log.Info().Str("Username", username).Msg("Logging in.")

	doc, err := s.GetDocument(LOGIN_PATH)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	token, err := csrfToken(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	res, err := s.PostFormNoRedirect(LOGIN_PATH, url.Values{
		"_csrf":    {token},
		"goto":     {"/"},
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	res.Body.Close()

	if err = s.VerifyLogin(); err != nil {
		return err
	}

	log.Info().Str("Username", username).Msg("Logged in.")
	return nil
}

// VerifyLogin fetches the site root and checks for the logout link that only
// renders for an authenticated session.
func (s *Session) VerifyLogin() error {
	doc, err := s.GetDocument("")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	if doc.Find(`a[href^="/u/logout"]`).Length() == 0 {
		return ErrLoginFailed
	}

	return nil
}

// Logout ends the authenticated session.
func (s *Session) Logout() error {
	res, err := s.Get(LOGOUT_PATH)
	if err != nil {
		return err
	}
	res.Body.Close()

	log.Info().Msg("Logged out.")
	return nil
}
