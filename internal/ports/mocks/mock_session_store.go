package mocks

import (
	"context"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

type MockSessionStore struct {
	mock.Mock
}

type MockSessionStore_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSessionStore) EXPECT() *MockSessionStore_Expecter {
	return &MockSessionStore_Expecter{mock: &_m.Mock}
}

func (_m *MockSessionStore) Load(ctx context.Context) (domain.Session, error) {
	ret := _m.Called(ctx)

	var r0 domain.Session
	if rf, ok := ret.Get(0).(func(context.Context) domain.Session); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Get(0).(domain.Session)
	}

	return r0, ret.Error(1)
}

type MockSessionStore_Load_Call struct {
	*mock.Call
}

func (_e *MockSessionStore_Expecter) Load(ctx interface{}) *MockSessionStore_Load_Call {
	return &MockSessionStore_Load_Call{Call: _e.mock.On("Load", ctx)}
}

func (_c *MockSessionStore_Load_Call) Return(_a0 domain.Session, _a1 error) *MockSessionStore_Load_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_m *MockSessionStore) Save(ctx context.Context, session domain.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

type MockSessionStore_Save_Call struct {
	*mock.Call
}

func (_e *MockSessionStore_Expecter) Save(ctx interface{}, session interface{}) *MockSessionStore_Save_Call {
	return &MockSessionStore_Save_Call{Call: _e.mock.On("Save", ctx, session)}
}

func (_c *MockSessionStore_Save_Call) Return(_a0 error) *MockSessionStore_Save_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_m *MockSessionStore) Clear(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

type MockSessionStore_Clear_Call struct {
	*mock.Call
}

func (_e *MockSessionStore_Expecter) Clear(ctx interface{}) *MockSessionStore_Clear_Call {
	return &MockSessionStore_Clear_Call{Call: _e.mock.On("Clear", ctx)}
}

func (_c *MockSessionStore_Clear_Call) Return(_a0 error) *MockSessionStore_Clear_Call {
	_c.Call.Return(_a0)
	return _c
}

func NewMockSessionStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionStore {
	m := &MockSessionStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
