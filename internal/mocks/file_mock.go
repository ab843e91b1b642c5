package mocks

import (
	"github.com/stretchr/testify/mock"
	"gopkg.in/yaml.v3"
)

// MockFileOperations is a mock implementation of the FileOperations interface
type MockFileOperations struct {
	mock.Mock
}

func (m *MockFileOperations) IsFileExists(filePath string) (bool, error) {
	args := m.Called(filePath)
	return args.Bool(0), args.Error(1)
}

// ReadYamlFile decodes the YAML document given as the first return value into v,
// so tests can exercise real decoding without touching disk.
func (m *MockFileOperations) ReadYamlFile(filePath string, v any) error {
	args := m.Called(filePath, v)
	if err := args.Error(1); err != nil {
		return err
	}
	if doc, ok := args.Get(0).(string); ok && doc != "" {
		return yaml.Unmarshal([]byte(doc), v)
	}
	return nil
}
