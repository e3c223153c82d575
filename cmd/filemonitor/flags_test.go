package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want AppFlags
	}{
		{
			name: "defaults",
			args: nil,
			want: AppFlags{EnvFile: ".env"},
		},
		{
			name: "short options",
			args: []string{"-c", "monitor.yaml", "-e", "prod.env"},
			want: AppFlags{ConfigFile: "monitor.yaml", EnvFile: "prod.env"},
		},
		{
			name: "modes",
			args: []string{"--once", "--discover-chat-id"},
			want: AppFlags{EnvFile: ".env", Once: true, DiscoverChatID: true},
		},
		{
			name: "version",
			args: []string{"-v"},
			want: AppFlags{EnvFile: ".env", Version: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, helpShown, err := ParseFlags(tt.args)
			require.NoError(t, err)
			assert.False(t, helpShown)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_UnknownOption(t *testing.T) {
	_, helpShown, err := ParseFlags([]string{"--bogus"})
	assert.Error(t, err)
	assert.False(t, helpShown)
}

func TestRun_Version(t *testing.T) {
	assert.Equal(t, 0, run([]string{"--version"}))
}
