// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mocks holds testify mocks for the login collaborators.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockAuthenticator is a mock implementation of login.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

// MockWeatherSource is a mock implementation of login.WeatherSource
type MockWeatherSource struct {
	mock.Mock
}

func (m *MockWeatherSource) WeatherByCity(ctx context.Context, city string) (json.RawMessage, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockSessions is a mock implementation of login.Sessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Login(principal string, weather json.RawMessage) error {
	args := m.Called(principal, weather)
	return args.Error(0)
}
