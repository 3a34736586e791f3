package domain

// Principal is the authenticated user as reported by the backend.
type Principal struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
}

func (p *Principal) Name() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Session pairs the bearer credential with its principal. Both fields change
// together; Credential is either empty or a single opaque token.
type Session struct {
	Credential string
	Principal  *Principal
}

func (s Session) LoggedIn() bool {
	return s.Credential != ""
}
