package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"3s"`, want: 3 * time.Second},
		{name: "hours", input: `"24h"`, want: 24 * time.Hour},
		{name: "nanoseconds", input: `1000000000`, want: time.Second},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var cfg struct {
		TTL  Duration `yaml:"ttl"`
		Nano Duration `yaml:"nano"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("ttl: 12h\nnano: 5\n"), &cfg))
	assert.Equal(t, 12*time.Hour, cfg.TTL.Duration)
	assert.Equal(t, time.Duration(5), cfg.Nano.Duration)
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90m")))
	assert.Equal(t, 90*time.Minute, d.Duration)

	require.NoError(t, d.UnmarshalText([]byte("1000")))
	assert.Equal(t, time.Microsecond, d.Duration)

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
