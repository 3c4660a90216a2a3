// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for auth interfaces.
package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// Hash provides a mock function with given fields: password
func (_m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := _m.Called(password)

	if fn, ok := ret.Get(0).(func(string) (string, error)); ok {
		return fn(password)
	}
	return ret.String(0), ret.Error(1)
}

// Verify provides a mock function with given fields: password, hash
func (_m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := _m.Called(password, hash)

	if fn, ok := ret.Get(0).(func(string, string) (bool, error)); ok {
		return fn(password, hash)
	}
	return ret.Bool(0), ret.Error(1)
}

// NeedsRehash provides a mock function with given fields: hash
func (_m *MockPasswordHasher) NeedsRehash(hash string) bool {
	ret := _m.Called(hash)

	if fn, ok := ret.Get(0).(func(string) bool); ok {
		return fn(hash)
	}
	return ret.Bool(0)
}

// NewMockPasswordHasher creates a new MockPasswordHasher. It registers a
// cleanup function that asserts the mock's expectations.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
