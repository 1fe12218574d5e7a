package conf

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

// Store persists Config as a TOML file at Path
type Store struct {
	Path string
	mu   sync.RWMutex
	conf Config
}

// fileConfig mirrors Config with wide optional fields so that missing keys and
// out-of-range numbers can be told apart from zero values
type fileConfig struct {
	RefreshIntervalSeconds *int64 `toml:"refresh_interval_seconds"`
	DarkMode               *bool  `toml:"dark_mode"`
}

// NewStore returns a store for path, DefaultPath when empty.
// Nothing is read until Load is called.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path, conf: Default()}
}

// Load reads the config file into memory and returns it.
// A missing or malformed file yields Default, never an error.
func (s *Store) Load() Config {
	conf, err := s.decode()
	if err != nil {
		conf = Default()
	}

	s.mu.Lock()
	s.conf = conf
	s.mu.Unlock()
	return conf
}

func (s *Store) decode() (Config, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return Config{}, fmt.Errorf("config file does not exist: %s", s.Path)
	}

	var raw fileConfig
	if _, err := toml.DecodeFile(s.Path, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config %w", err)
	}

	conf := Default()
	if raw.RefreshIntervalSeconds != nil {
		seconds := *raw.RefreshIntervalSeconds
		if seconds < 0 {
			seconds = 0
		}
		conf.RefreshIntervalSeconds = ClampInterval(uint64(seconds))
	}
	if raw.DarkMode != nil {
		conf.DarkMode = *raw.DarkMode
	}
	return conf, nil
}

// Write saves conf to the TOML file at Path and keeps it as the current config
func (s *Store) Write(conf Config) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create config file %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close config file %w", cerr)
		}
	}()

	if err = toml.NewEncoder(f).Encode(conf); err != nil {
		return fmt.Errorf("failed to write config file %w", err)
	}

	s.conf = conf
	return nil
}

// Read returns a copy of the current configuration
func (s *Store) Read() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conf
}
