package tokentest

import (
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of token.Storage
type MockStorage struct {
	mock.Mock
}

func (s *MockStorage) Token() string {
	args := s.Called()
	return args.String(0)
}

func (s *MockStorage) SignPath(path string) string {
	args := s.Called(path)
	return args.String(0)
}

func (s *MockStorage) Update(token string) {
	_ = s.Called(token)
}
