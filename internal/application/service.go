package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/coffeeviz-cli/internal/api"
	"github.com/bnema/coffeeviz-cli/internal/domain"
)

// Executor runs one request through the pipeline.
type Executor interface {
	Execute(ctx context.Context, req domain.Request) domain.Result
}

// SessionHolder is the slice of session.Holder the service drives.
type SessionHolder interface {
	Snapshot() domain.Session
	SetSession(ctx context.Context, credential string, principal *domain.Principal) error
	Invalidate(ctx context.Context) (bool, error)
}

type Service struct {
	exec    Executor
	session SessionHolder
}

func NewService(exec Executor, session SessionHolder) *Service {
	return &Service{
		exec:    exec,
		session: session,
	}
}

func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*domain.Principal, error) {
	credentials, err := cmd.validate()
	if err != nil {
		return nil, err
	}

	result := s.exec.Execute(ctx, api.Login(credentials))
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	resp, err := api.DecodeLogin(result.Data())
	if err != nil {
		return nil, err
	}
	if err := s.session.SetSession(ctx, resp.Token, resp.UserInfo); err != nil {
		return nil, err
	}

	return resp.UserInfo, nil
}

// Logout tells the backend and then ends the local session, even when the
// backend call failed.
func (s *Service) Logout(ctx context.Context) (LogoutReport, error) {
	if !s.session.Snapshot().LoggedIn() {
		return LogoutReport{}, domain.ErrNotLoggedIn
	}

	report := LogoutReport{ServerErr: s.exec.Execute(ctx, api.Logout()).Err()}

	if _, err := s.session.Invalidate(ctx); err != nil {
		return report, err
	}
	return report, nil
}

// WhoAmI returns the stored principal, asking the backend when none is
// cached or refresh is set. A fetched principal is stored with the session.
func (s *Service) WhoAmI(ctx context.Context, refresh bool) (*domain.Principal, error) {
	current := s.session.Snapshot()
	if !current.LoggedIn() {
		return nil, domain.ErrNotLoggedIn
	}
	if !refresh && current.Principal != nil {
		return current.Principal, nil
	}

	result := s.exec.Execute(ctx, api.UserInfo())
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	var principal domain.Principal
	if err := result.Decode(&principal); err != nil {
		return nil, err
	}
	if err := s.session.SetSession(ctx, current.Credential, &principal); err != nil {
		return nil, err
	}

	return &principal, nil
}

// Call executes req and returns the envelope data of a success.
func (s *Service) Call(ctx context.Context, req domain.Request) (json.RawMessage, error) {
	result := s.exec.Execute(ctx, req)
	if err := result.Err(); err != nil {
		var failure *domain.Failure
		if errors.As(err, &failure) && failure.Kind == domain.FailureUnauthorized {
			return nil, fmt.Errorf("%s %s: %w (run cvz login)", req.Method, req.Path, err)
		}
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return result.Data(), nil
}
