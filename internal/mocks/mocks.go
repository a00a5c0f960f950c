// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPriceRepository mocks the PriceRepository interface
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) InsertBatch(ctx context.Context, records []*entity.PriceRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockPriceRepository) Any(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockPriceRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPriceRepository) Symbols(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockPriceRepository) FindLatest(ctx context.Context, symbol string) (*entity.PriceRecord, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PriceRecord), args.Error(1)
}

func (m *MockPriceRepository) FindByDate(ctx context.Context, symbol string, date time.Time) (*entity.PriceRecord, error) {
	args := m.Called(ctx, symbol, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PriceRecord), args.Error(1)
}

func (m *MockPriceRepository) FindRange(ctx context.Context, symbols []string, start, end time.Time) ([]*entity.PriceRecord, error) {
	args := m.Called(ctx, symbols, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PriceRecord), args.Error(1)
}

func (m *MockPriceRepository) OldestDate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

// MockRateProvider mocks the RateProvider interface
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) GetLatestRates(ctx context.Context) (*entity.ConversionRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConversionRate), args.Error(1)
}

func (m *MockRateProvider) GetLatestEURConversionRate(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
