package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/upb/employee-management/adapters"
)

// AttendanceSettings controls the attendance tracker
type AttendanceSettings struct {
	// AllowRepeatedEntries accepts a login while already logged in (and a
	// logout without a login) instead of rejecting it.
	AllowRepeatedEntries bool `json:"allow_repeated_entries" yaml:"allow_repeated_entries"`
}

// LeaveSettings controls leave request validation
type LeaveSettings struct {
	MaxConsecutiveDays int `json:"max_consecutive_days" yaml:"max_consecutive_days"`
	MinNoticeDays      int `json:"min_notice_days" yaml:"min_notice_days"`
}

// PerformanceSettings controls performance record validation
type PerformanceSettings struct {
	RatingMin         float64 `json:"rating_min" yaml:"rating_min"`
	RatingMax         float64 `json:"rating_max" yaml:"rating_max"`
	MaxFeedbackLength int     `json:"max_feedback_length" yaml:"max_feedback_length"`
}

// FileConfig is the layout of the JSON or YAML configuration file
type FileConfig struct {
	Adapters    map[string]map[string]any `json:"adapters" yaml:"adapters"`
	Attendance  AttendanceSettings        `json:"attendance" yaml:"attendance"`
	Leave       LeaveSettings             `json:"leave" yaml:"leave"`
	Performance PerformanceSettings       `json:"performance" yaml:"performance"`
}

// DefaultFileConfig returns the settings used when no file is given
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Adapters: map[string]map[string]any{},
		Leave: LeaveSettings{
			MaxConsecutiveDays: 30,
		},
		Performance: PerformanceSettings{
			RatingMin:         0,
			RatingMax:         5,
			MaxFeedbackLength: 2000,
		},
	}
}

// Manager layers the optional configuration file over the environment config
type Manager struct {
	env  *Config
	path string
	file FileConfig
}

// NewManager reads the file at path (JSON or YAML) on top of env. An empty
// path yields the defaults; a path that does not exist is an error.
func NewManager(env *Config, path string) (*Manager, error) {
	m := &Manager{env: env, path: path, file: DefaultFileConfig()}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := m.load(data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return m, nil
}

// NewManagerFromBytes parses an in-memory document, used by tests and embedding
func NewManagerFromBytes(env *Config, data []byte) (*Manager, error) {
	m := &Manager{env: env, file: DefaultFileConfig()}
	if err := m.load(data); err != nil {
		return nil, err
	}
	return m, nil
}

// load decodes a JSON object or a YAML document
func (m *Manager) load(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	file := DefaultFileConfig()
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &file); err != nil {
			return err
		}
	} else if err := yaml.Unmarshal(trimmed, &file); err != nil {
		return err
	}
	if file.Adapters == nil {
		file.Adapters = map[string]map[string]any{}
	}
	for name := range file.Adapters {
		if _, err := adapters.ParseCategory(name); err != nil {
			return fmt.Errorf("adapters.%s: %w", name, err)
		}
	}
	if err := file.validate(); err != nil {
		return err
	}
	m.file = file
	return nil
}

func (f FileConfig) validate() error {
	if f.Leave.MaxConsecutiveDays <= 0 {
		return fmt.Errorf("leave.max_consecutive_days must be positive")
	}
	if f.Leave.MinNoticeDays < 0 {
		return fmt.Errorf("leave.min_notice_days cannot be negative")
	}
	if f.Performance.RatingMin >= f.Performance.RatingMax {
		return fmt.Errorf("performance.rating_min must be below rating_max")
	}
	if f.Performance.MaxFeedbackLength <= 0 {
		return fmt.Errorf("performance.max_feedback_length must be positive")
	}
	return nil
}

// Path returns the file the manager was loaded from, if any
func (m *Manager) Path() string {
	return m.path
}

// Env returns the environment configuration, which may be nil
func (m *Manager) Env() *Config {
	return m.env
}

// AdapterOptions returns the initialization options for a provider: the
// environment defaults with the file's adapters.<category> map on top.
func (m *Manager) AdapterOptions(category adapters.Category, provider adapters.ProviderName) adapters.Options {
	opts := adapters.Options{}
	if m.env != nil {
		opts = m.env.AdapterDefaults(category, provider)
	}
	for name, section := range m.file.Adapters {
		if strings.EqualFold(name, string(category)) {
			opts = opts.Merge(adapters.Options(section))
		}
	}
	return opts
}

// Attendance returns the attendance settings
func (m *Manager) Attendance() AttendanceSettings {
	return m.file.Attendance
}

// Leave returns the leave settings
func (m *Manager) Leave() LeaveSettings {
	return m.file.Leave
}

// Performance returns the performance settings
func (m *Manager) Performance() PerformanceSettings {
	return m.file.Performance
}
