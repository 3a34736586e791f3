package application

import (
	"errors"
	"strings"

	"github.com/bnema/coffeeviz-cli/internal/api"
)

var ErrMissingCredentials = errors.New("username and password are required")

type LoginCommand struct {
	Username string
	Password string
}

func (c LoginCommand) validate() (api.Credentials, error) {
	username := strings.TrimSpace(c.Username)
	if username == "" || c.Password == "" {
		return api.Credentials{}, ErrMissingCredentials
	}
	return api.Credentials{Username: username, Password: c.Password}, nil
}
