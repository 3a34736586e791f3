package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

type MockNavigator struct {
	mock.Mock
}

type MockNavigator_Expecter struct {
	mock *mock.Mock
}

func (_m *MockNavigator) EXPECT() *MockNavigator_Expecter {
	return &MockNavigator_Expecter{mock: &_m.Mock}
}

func (_m *MockNavigator) RedirectToLogin(ctx context.Context) {
	_m.Called(ctx)
}

type MockNavigator_RedirectToLogin_Call struct {
	*mock.Call
}

func (_e *MockNavigator_Expecter) RedirectToLogin(ctx interface{}) *MockNavigator_RedirectToLogin_Call {
	return &MockNavigator_RedirectToLogin_Call{Call: _e.mock.On("RedirectToLogin", ctx)}
}

func (_c *MockNavigator_RedirectToLogin_Call) Return() *MockNavigator_RedirectToLogin_Call {
	_c.Call.Return()
	return _c
}

func NewMockNavigator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNavigator {
	m := &MockNavigator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
