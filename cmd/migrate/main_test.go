package main

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    command
		wantErr string
	}{
		{name: "up", args: []string{"up"}, want: command{action: "up", timeout: 30 * time.Second}},
		{name: "down with path", args: []string{"-path", "./migrations", "down"}, want: command{action: "down", path: "./migrations", timeout: 30 * time.Second}},
		{name: "negative steps", args: []string{"-timeout", "5s", "steps", "-1"}, want: command{action: "steps", arg: -1, timeout: 5 * time.Second}},
		{name: "force", args: []string{"force", "1"}, want: command{action: "force", arg: 1, timeout: 30 * time.Second}},
		{name: "version", args: []string{"version"}, want: command{action: "version", timeout: 30 * time.Second}},
		{name: "no action", args: nil, wantErr: "usage"},
		{name: "unknown action", args: []string{"drop"}, wantErr: `unknown action "drop"`},
		{name: "extra argument", args: []string{"up", "2"}, wantErr: "usage"},
		{name: "steps needs N", args: []string{"steps"}, wantErr: "usage"},
		{name: "steps not a number", args: []string{"steps", "two"}, wantErr: "not an integer"},
		{name: "zero steps", args: []string{"steps", "0"}, wantErr: "must not be zero"},
		{name: "negative force", args: []string{"force", "-1"}, wantErr: "must not be negative"},
		{name: "unknown flag", args: []string{"-up"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.args, io.Discard)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
