// Package mocks provides test doubles for field extraction.
package mocks

import (
	"context"

	extract "github.com/sells-group/oficio-cli/internal/extract"
	model "github.com/sells-group/oficio-cli/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// MockFieldExtractor is a mock type for the FieldExtractor interface.
type MockFieldExtractor struct {
	mock.Mock
}

// Extract provides a mock function with given fields: ctx, req
func (_m *MockFieldExtractor) Extract(ctx context.Context, req extract.Request) (*model.Fields, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Extract")
	}

	var r0 *model.Fields
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, extract.Request) (*model.Fields, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Fields)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NewMockFieldExtractor creates a new instance of MockFieldExtractor. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockFieldExtractor(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFieldExtractor {
	m := &MockFieldExtractor{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
