package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var clientFlags = []string{"-d", "-dsn", "-s", "-r"}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "storage flags kept, config flag dropped",
			args:    []string{"-c", "dc.yaml", "-d", "sqlite", "-dsn", "dreams.db"},
			allowed: clientFlags,
			want:    []string{"-d", "sqlite", "-dsn", "dreams.db"},
		},
		{
			name:    "equals form",
			args:    []string{"-dsn=postgres://u@db/dreams", "-verbose"},
			allowed: clientFlags,
			want:    []string{"-dsn=postgres://u@db/dreams"},
		},
		{
			name:    "equals form may carry a dash-leading value",
			args:    []string{"-r=-weird"},
			allowed: clientFlags,
			want:    []string{"-r=-weird"},
		},
		{
			name:    "dangling flag kept without value",
			args:    []string{"-s"},
			allowed: clientFlags,
			want:    []string{"-s"},
		},
		{
			name:    "next flag is never taken as a value",
			args:    []string{"-s", "-r", "redis://localhost:6379/0"},
			allowed: clientFlags,
			want:    []string{"-s", "-r", "redis://localhost:6379/0"},
		},
		{
			name:    "positional arguments dropped",
			args:    []string{"login", "-x", "1"},
			allowed: clientFlags,
			want:    []string{},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-d", "memory", "-d", "sqlite"},
			allowed: clientFlags,
			want:    []string{"-d", "memory", "-d", "sqlite"},
		},
		{
			name:    "nothing to filter",
			args:    nil,
			allowed: clientFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	t.Run("short -c with value", func(t *testing.T) {
		assert.Equal(t, "/path/short.json", ConfigFileFlag([]string{"-c", "/path/short.json"}))
	})

	t.Run("long -config with value", func(t *testing.T) {
		assert.Equal(t, "/path/long.yaml", ConfigFileFlag([]string{"-config", "/path/long.yaml"}))
	})

	t.Run("equals form", func(t *testing.T) {
		assert.Equal(t, "/path/eq.json", ConfigFileFlag([]string{"--config=/path/eq.json", "-d", "x.db"}))
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFileFlag([]string{"-x", "1", "-y", "2"}))
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.json", ConfigFileFlag([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	})
}
