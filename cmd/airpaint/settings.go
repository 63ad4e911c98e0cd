package main

import (
	"fmt"
	"strings"

	"github.com/ayusman/airpaint/internal/config"
)

// settingFlags collects repeated -set key=value flags.
type settingFlags []string

func (s *settingFlags) String() string {
	return strings.Join(*s, ",")
}

func (s *settingFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// settingStore is the part of store.SettingsRepository -set needs.
type settingStore interface {
	All() (map[string]string, error)
	Set(key, value string) error
}

// persistSetting stores one key=value pair after checking that the stored
// settings with it applied still form a valid configuration.
func persistSetting(st settingStore, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return fmt.Errorf("-set wants key=value, got %q", kv)
	}

	current, err := st.All()
	if err != nil {
		return err
	}
	current[key] = value
	if _, err := config.Load(current); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return st.Set(key, value)
}
