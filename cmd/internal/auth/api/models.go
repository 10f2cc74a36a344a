package authapi

import "station/cmd/identity"

// rememberFlag accepts both remember_me and the legacy rememberMe spelling.
type rememberFlag struct {
	RememberMe       bool `json:"remember_me"`
	RememberMeLegacy bool `json:"rememberMe"`
}

func (f rememberFlag) wantsRemember() bool { return f.RememberMe || f.RememberMeLegacy }

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	rememberFlag
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	rememberFlag
}

type userResponse struct {
	User identity.User `json:"user"`
}

type logoutAllResponse struct {
	Revoked int64 `json:"revoked"`
}
