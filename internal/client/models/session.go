package models

// Token is the credential pair issued by the backend. The client never
// looks inside either value; Access is forwarded as a bearer token and
// Refresh is exchanged for a new pair.
type Token struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token,omitempty"`
}

// Session is the signed-in identity plus its credential.
type Session struct {
	User  *User  `json:"user"`
	Token *Token `json:"token"`
}

// Valid reports whether both halves of the session are present.
func (s *Session) Valid() bool {
	return s != nil && s.User != nil && s.Token != nil
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Token != nil {
		t := *s.Token
		out.Token = &t
	}
	return out
}
