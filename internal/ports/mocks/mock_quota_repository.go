package mocks

import (
	"context"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

type MockQuotaRepository struct {
	mock.Mock
}

type MockQuotaRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockQuotaRepository) EXPECT() *MockQuotaRepository_Expecter {
	return &MockQuotaRepository_Expecter{mock: &_m.Mock}
}

func (_m *MockQuotaRepository) Get(ctx context.Context) (domain.QuotaBoard, error) {
	ret := _m.Called(ctx)

	if rf, ok := ret.Get(0).(func(context.Context) (domain.QuotaBoard, error)); ok {
		return rf(ctx)
	}

	return ret.Get(0).(domain.QuotaBoard), ret.Error(1)
}

type MockQuotaRepository_Get_Call struct {
	*mock.Call
}

func (_e *MockQuotaRepository_Expecter) Get(ctx interface{}) *MockQuotaRepository_Get_Call {
	return &MockQuotaRepository_Get_Call{Call: _e.mock.On("Get", ctx)}
}

func (_c *MockQuotaRepository_Get_Call) Return(_a0 domain.QuotaBoard, _a1 error) *MockQuotaRepository_Get_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockQuotaRepository_Get_Call) RunAndReturn(run func(context.Context) (domain.QuotaBoard, error)) *MockQuotaRepository_Get_Call {
	_c.Call.Return(run)
	return _c
}

func (_m *MockQuotaRepository) Save(ctx context.Context, board domain.QuotaBoard) error {
	ret := _m.Called(ctx, board)

	if rf, ok := ret.Get(0).(func(context.Context, domain.QuotaBoard) error); ok {
		return rf(ctx, board)
	}

	return ret.Error(0)
}

type MockQuotaRepository_Save_Call struct {
	*mock.Call
}

func (_e *MockQuotaRepository_Expecter) Save(ctx interface{}, board interface{}) *MockQuotaRepository_Save_Call {
	return &MockQuotaRepository_Save_Call{Call: _e.mock.On("Save", ctx, board)}
}

func (_c *MockQuotaRepository_Save_Call) Return(_a0 error) *MockQuotaRepository_Save_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockQuotaRepository_Save_Call) RunAndReturn(run func(context.Context, domain.QuotaBoard) error) *MockQuotaRepository_Save_Call {
	_c.Call.Return(run)
	return _c
}

func NewMockQuotaRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockQuotaRepository {
	m := &MockQuotaRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
