// Package api builds the request descriptors for the CoffeeViz backend and
// decodes the data payloads the CLI cares about.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/coffeeviz-cli/internal/domain"
)

const (
	PathLogin    = "/api/auth/login"
	PathLogout   = "/api/auth/logout"
	PathUserInfo = "/api/auth/userinfo"
)

var ErrMissingToken = errors.New("login response carries no token")

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string            `json:"token"`
	UserInfo *domain.Principal `json:"userInfo"`
}

func Login(credentials Credentials) domain.Request {
	return domain.Post(PathLogin, credentials)
}

func Logout() domain.Request {
	return domain.Post(PathLogout, nil)
}

func UserInfo() domain.Request {
	return domain.Get(PathUserInfo)
}

func DecodeLogin(data json.RawMessage) (LoginResponse, error) {
	var resp LoginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return LoginResponse{}, fmt.Errorf("decode login response: %w", err)
	}
	resp.Token = strings.TrimSpace(resp.Token)
	if resp.Token == "" {
		return LoginResponse{}, ErrMissingToken
	}
	return resp, nil
}
