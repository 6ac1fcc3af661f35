package classifier

import (
	"context"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"github.com/stretchr/testify/mock"
)

// MockClassifier is a mock implementation of Classifier for testing.
type MockClassifier struct {
	mock.Mock
}

var _ contract.Classifier = &MockClassifier{} // Compile-time check

// Predict implements the Classifier interface.
func (m *MockClassifier) Predict(ctx context.Context, rows []schema.ClassifierRow) ([]float64, error) {
	args := m.Called(ctx, rows)
	probs, _ := args.Get(0).([]float64)
	return probs, args.Error(1)
}

// FeatureImportances implements the Classifier interface.
func (m *MockClassifier) FeatureImportances() map[string]float64 {
	args := m.Called()
	imp, _ := args.Get(0).(map[string]float64)
	return imp
}

// InputColumns implements the Classifier interface.
func (m *MockClassifier) InputColumns() []string {
	args := m.Called()
	cols, _ := args.Get(0).([]string)
	return cols
}

// Describe implements the Classifier interface.
func (m *MockClassifier) Describe() schema.ModelInfo {
	args := m.Called()
	return args.Get(0).(schema.ModelInfo)
}
