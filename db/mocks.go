package db

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type SessionMock struct {
	mock.Mock
}

func (o *SessionMock) Execute(ctx context.Context, query string, values ...interface{}) (int64, error) {
	args := o.Called(query, values)
	return int64(args.Int(0)), args.Error(1)
}

func (o *SessionMock) ExecuteIter(ctx context.Context, query string, values ...interface{}) (ResultSet, error) {
	args := o.Called(query, values)
	return args.Get(0).(ResultSet), args.Error(1)
}

func (o *SessionMock) Close() error {
	return nil
}

type ResultMock struct {
	mock.Mock
}

func (o *ResultMock) Values() []map[string]interface{} {
	args := o.Called()
	return args.Get(0).([]map[string]interface{})
}

func NewResultMock(values []map[string]interface{}) *ResultMock {
	result := &ResultMock{}
	result.On("Values").Return(values)
	return result
}
