package driver

import "path/filepath"

// MockDriver is a test double for SiteDriver (and therefore Driver).
type MockDriver struct {
	name    string
	service string
	paths   Paths

	// Function mocks - set these to customize behavior
	AddFunc       func(domain, content string) error
	EnableFunc    func(domain string) error
	ListFunc      func() ([]string, error)
	IsEnabledFunc func(domain string) (bool, error)
	TestFunc      func() error
	RestartFunc   func() error

	// Call tracking - check these to verify interactions
	AddCalls       []AddCall
	EnableCalls    []string
	ListCalls      int
	IsEnabledCalls []string
	TestCalls      int
	RestartCalls   int
}

// AddCall records arguments passed to Add
type AddCall struct {
	Domain  string
	Content string
}

// NewMockDriver creates a MockDriver whose calls all succeed.
func NewMockDriver(name, service, availableDir, enabledDir string) *MockDriver {
	return &MockDriver{
		name:    name,
		service: service,
		paths: Paths{
			Available: availableDir,
			Enabled:   enabledDir,
		},
	}
}

func (m *MockDriver) Name() string {
	return m.name
}

func (m *MockDriver) Service() string {
	return m.service
}

func (m *MockDriver) Paths() Paths {
	return m.paths
}

func (m *MockDriver) ConfigPath(domain string) string {
	return filepath.Join(m.paths.Available, domain)
}

func (m *MockDriver) Add(domain, content string) error {
	m.AddCalls = append(m.AddCalls, AddCall{Domain: domain, Content: content})
	if m.AddFunc != nil {
		return m.AddFunc(domain, content)
	}
	return nil
}

func (m *MockDriver) Enable(domain string) error {
	m.EnableCalls = append(m.EnableCalls, domain)
	if m.EnableFunc != nil {
		return m.EnableFunc(domain)
	}
	return nil
}

func (m *MockDriver) List() ([]string, error) {
	m.ListCalls++
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []string{}, nil
}

func (m *MockDriver) IsEnabled(domain string) (bool, error) {
	m.IsEnabledCalls = append(m.IsEnabledCalls, domain)
	if m.IsEnabledFunc != nil {
		return m.IsEnabledFunc(domain)
	}
	return false, nil
}

func (m *MockDriver) Test() error {
	m.TestCalls++
	if m.TestFunc != nil {
		return m.TestFunc()
	}
	return nil
}

func (m *MockDriver) Restart() error {
	m.RestartCalls++
	if m.RestartFunc != nil {
		return m.RestartFunc()
	}
	return nil
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.AddCalls = nil
	m.EnableCalls = nil
	m.IsEnabledCalls = nil
	m.ListCalls = 0
	m.TestCalls = 0
	m.RestartCalls = 0
}
