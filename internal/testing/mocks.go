package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockBuckets is a mock implementation of the backup bucket client.
type MockBuckets struct {
	mock.Mock
}

// BucketExists mocks the bucket existence probe.
func (m *MockBuckets) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

// CreateBucket mocks bucket creation.
func (m *MockBuckets) CreateBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// NewMockBuckets creates a MockBuckets whose bucket already exists.
func NewMockBuckets() *MockBuckets {
	m := &MockBuckets{}
	m.On("BucketExists", mock.Anything, mock.Anything).Return(true, nil)
	return m
}

// Missing configures the mock for a bucket that has to be created.
func (m *MockBuckets) Missing() *MockBuckets {
	m.ExpectedCalls = nil
	m.On("BucketExists", mock.Anything, mock.Anything).Return(false, nil)
	m.On("CreateBucket", mock.Anything, mock.Anything).Return(nil)
	return m
}
