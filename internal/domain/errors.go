package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrServerFault      = errors.New("server fault")
	ErrTransportFault   = errors.New("transport fault")
	ErrApplicationFault = errors.New("application fault")

	ErrNotLoggedIn = errors.New("not logged in")
	ErrNoQuotas    = errors.New("no quota snapshot")
)
