package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/vectory/ai"
	"github.com/poiesic/vectory/tokens"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"INFO", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", 0)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(nil, set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClientFlags_Defaults(t *testing.T) {
	flags := clientFlags()

	find := func(name string) cli.Flag {
		for _, f := range flags {
			if f.Names()[0] == name {
				return f
			}
		}
		return nil
	}

	model, ok := find("model").(*cli.StringFlag)
	require.True(t, ok)
	assert.Equal(t, ai.DefaultModel, model.Value)

	dim, ok := find("dimension").(*cli.IntFlag)
	require.True(t, ok)
	assert.Equal(t, ai.DefaultDimension, dim.Value)

	key, ok := find("api-key").(*cli.StringFlag)
	require.True(t, ok)
	assert.Contains(t, key.EnvVars, "OPENAI_API_KEY")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	set := flag.NewFlagSet("test", 0)
	set.String("provider", "carrier-pigeon", "")
	set.String("api-key", "k", "")
	set.String("base-url", ai.DefaultBaseURL, "")
	set.String("model", ai.DefaultModel, "")
	set.Int("dimension", ai.DefaultDimension, "")
	set.Int("rpm", 0, "")
	c := cli.NewContext(nil, set, nil)

	_, err := newClient(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestNewEstimator_HeuristicByDefault(t *testing.T) {
	set := flag.NewFlagSet("test", 0)
	set.Bool("exact-tokens", false, "")
	set.String("model", ai.DefaultModel, "")
	c := cli.NewContext(nil, set, nil)

	est := newEstimator(c)
	assert.IsType(t, tokens.Heuristic{}, est)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "a b c", snippet("a\n b\t c", 10))
	assert.Equal(t, "abcde...", snippet("abcdefghij", 5))
}
