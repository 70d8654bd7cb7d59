// Package testing provides test utilities and database setup for testing the tracker
package testing

import (
	"fmt"
	"math/rand"

	"github.com/kbtwatch/tracker/models"
	"github.com/kbtwatch/tracker/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestResult inserts a result with a random unique period
func (tf *TestFixtures) CreateTestResult() (*models.Result, error) {
	period := fmt.Sprintf("2024%09d", rand.Intn(900000000)+100000000)
	return tf.CreateTestResultWithPeriod(period)
}

// CreateTestResultWithPeriod inserts a result carrying the given period
func (tf *TestFixtures) CreateTestResultWithPeriod(period string) (*models.Result, error) {
	result := &models.Result{
		Period:    period,
		Number:    fmt.Sprintf("%d", rand.Intn(10)),
		Color:     []string{"red", "green", "violet"}[rand.Intn(3)],
		CreatedAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(result).Error; err != nil {
		return nil, fmt.Errorf("failed to create test result: %w", err)
	}

	return result, nil
}
