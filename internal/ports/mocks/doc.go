// Package mocks holds hand-written testify mocks for the ports interfaces.
// They follow mockery's expecter layout (EXPECT().Method(...).Return(...))
// so tests read the same as generated ones.
package mocks
