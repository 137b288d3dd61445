package http

import (
	"net/http"
	"net/url"
	"regexp"
)

// Body shapes are validated here, at the route layer; the service below
// trusts anything that gets through.
var (
	// usernameRegex: leading letter or underscore, then word characters.
	usernameRegex = regexp.MustCompile(`^[A-Z_a-z]\w*$`)

	// emailRegex is deliberately loose; real validation happens when the
	// address is verified out of band.
	emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

	// passwordRegex: at least 8 characters from the printable ASCII set.
	passwordRegex = regexp.MustCompile("^[a-zA-Z0-9!\"#$%&'()*+,\\-./:;<=>?@[\\]^_`{|}~]{8,}$")
)

func validUsername(s string) bool { return usernameRegex.MatchString(s) }
func validEmail(s string) bool    { return emailRegex.MatchString(s) }
func validPassword(s string) bool { return passwordRegex.MatchString(s) }

// validAvatar accepts an absolute URL or an empty string (clears the
// avatar).
func validAvatar(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// sessionCookieName carries the opaque browser session identifier.
const sessionCookieName = "_session"

// sessionID extracts the session identifier from the request cookie, or
// "" when absent. Absence is a service-level failure, not a parse error.
func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
