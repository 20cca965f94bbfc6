package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dropfour/server/game/engine"
)

var (
	ErrRuleSetNotFound = errors.New("rule set not found")
	ErrInvalidRuleSet  = errors.New("invalid rule set")
)

// DefaultName is the built-in rule set that always resolves.
const DefaultName = "classic"

// RuleSet is a named engine rule configuration.
type RuleSet struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	engine.Rules
}

// Manager handles rule set loading and caching.
type Manager struct {
	configDir string
	mu        sync.RWMutex
	ruleSets  map[string]*RuleSet
}

// NewManager creates a manager reading from configDir. An empty configDir
// means only the built-in default is available.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	return &Manager{
		configDir: configDir,
		ruleSets:  make(map[string]*RuleSet),
	}, nil
}

// Default returns the built-in classic rule set.
func (m *Manager) Default() *RuleSet {
	return &RuleSet{
		Name:        DefaultName,
		Description: "Standard 7x6 board, connect four",
		Rules:       engine.DefaultRules(),
	}
}

// Load resolves a rule set by name. The built-in default never touches the
// filesystem; everything else is read from the config directory once and
// cached.
func (m *Manager) Load(name string) (*RuleSet, error) {
	if name == "" || name == DefaultName {
		return m.Default(), nil
	}

	m.mu.RLock()
	if rs, ok := m.ruleSets[name]; ok {
		m.mu.RUnlock()
		return rs, nil
	}
	m.mu.RUnlock()

	if m.configDir == "" {
		return nil, ErrRuleSetNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if rs, ok := m.ruleSets[name]; ok {
		return rs, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRuleSetNotFound
		}
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}

	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}
	if rs.Name == "" {
		rs.Name = name
	}
	if err := engine.ValidateRules(rs.Rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}

	m.ruleSets[name] = &rs
	return &rs, nil
}

// List returns the built-in default plus every rule set file in the config
// directory.
func (m *Manager) List() ([]*RuleSet, error) {
	result := []*RuleSet{m.Default()}

	if m.configDir == "" {
		return result, nil
	}

	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		rs, err := m.Load(name)
		if err != nil {
			// Skip unparseable files; List is a discovery surface.
			continue
		}
		result = append(result, rs)
	}

	return result, nil
}
