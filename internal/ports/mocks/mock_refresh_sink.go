package mocks

import (
	"context"
	"encoding/json"

	mock "github.com/stretchr/testify/mock"
)

type MockRefreshSink struct {
	mock.Mock
}

type MockRefreshSink_Expecter struct {
	mock *mock.Mock
}

func (_m *MockRefreshSink) EXPECT() *MockRefreshSink_Expecter {
	return &MockRefreshSink_Expecter{mock: &_m.Mock}
}

func (_m *MockRefreshSink) ApplyRefresh(ctx context.Context, data json.RawMessage) error {
	ret := _m.Called(ctx, data)
	return ret.Error(0)
}

type MockRefreshSink_ApplyRefresh_Call struct {
	*mock.Call
}

func (_e *MockRefreshSink_Expecter) ApplyRefresh(ctx interface{}, data interface{}) *MockRefreshSink_ApplyRefresh_Call {
	return &MockRefreshSink_ApplyRefresh_Call{Call: _e.mock.On("ApplyRefresh", ctx, data)}
}

func (_c *MockRefreshSink_ApplyRefresh_Call) Return(_a0 error) *MockRefreshSink_ApplyRefresh_Call {
	_c.Call.Return(_a0)
	return _c
}

func NewMockRefreshSink(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRefreshSink {
	m := &MockRefreshSink{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
