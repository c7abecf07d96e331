package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "change due", args: []string{"--total", "4750", "--received", "10000"}, want: "お釣り: 5,250円"},
		{name: "exact amount", args: []string{"--total", "500", "--received", "500"}, want: "お釣り: 0円"},
		{name: "insufficient", args: []string{"--total", "500", "--received", "100"}, want: "足りません"},
		{name: "missing flag", args: []string{"--total", "500"}, wantErr: true},
		{name: "negative total", args: []string{"--total", "-1", "--received", "100"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := changeCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tc.args)

			err := cmd.Execute()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.want)
		})
	}
}

func TestCatalogCmd(t *testing.T) {
	cmd := catalogCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ビール")
	assert.Contains(t, out.String(), "3,750円")
}
