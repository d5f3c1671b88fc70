package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func findStringFlag(t *testing.T, cmd *cli.Command, name string) *cli.StringFlag {
	t.Helper()
	for _, f := range cmd.Flags {
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == name {
			return sf
		}
	}
	t.Fatalf("string flag %s not found on %s", name, cmd.Name)
	return nil
}

func findIntFlag(t *testing.T, cmd *cli.Command, name string) *cli.IntFlag {
	t.Helper()
	for _, f := range cmd.Flags {
		if inf, ok := f.(*cli.IntFlag); ok && inf.Name == name {
			return inf
		}
	}
	t.Fatalf("int flag %s not found on %s", name, cmd.Name)
	return nil
}

func TestAppCommands(t *testing.T) {
	app := newApp()

	assert.Equal(t, "indexit", app.Name)
	for _, name := range []string{"process", "process-container", "remove"} {
		assert.NotNil(t, findCommand(t, app, name))
	}
}

func TestProcessCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "process")

	t.Run("postgres-url is required from flag or env", func(t *testing.T) {
		f := findStringFlag(t, cmd, "postgres-url")
		assert.True(t, f.Required)
		assert.Contains(t, f.EnvVars, "INDEXIT_POSTGRES_URL")
	})

	t.Run("embedding-model is required", func(t *testing.T) {
		f := findStringFlag(t, cmd, "embedding-model")
		assert.True(t, f.Required)
		assert.Empty(t, f.Value)
	})

	t.Run("table names have defaults", func(t *testing.T) {
		assert.Equal(t, "text_chunks", findStringFlag(t, cmd, "text-table").Value)
		assert.Equal(t, "image_chunks", findStringFlag(t, cmd, "image-table").Value)
		assert.Equal(t, "summary_chunks", findStringFlag(t, cmd, "summary-table").Value)
	})

	t.Run("splitter defaults", func(t *testing.T) {
		assert.Equal(t, 1000, findIntFlag(t, cmd, "chunk-size").Value)
		assert.Equal(t, 100, findIntFlag(t, cmd, "chunk-overlap").Value)
	})

	t.Run("pii endpoint is optional", func(t *testing.T) {
		f := findStringFlag(t, cmd, "pii-endpoint")
		assert.False(t, f.Required)
		assert.Contains(t, f.EnvVars, "INDEXIT_PII_ENDPOINT")
	})
}

func TestRemoveCommandHasNoPIIFlag(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "remove")

	for _, f := range cmd.Flags {
		if bf, ok := f.(*cli.BoolFlag); ok {
			assert.NotEqual(t, "pii", bf.Name)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(newApp(), set, nil)
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			assert.NoError(t, setupLogger(newContext(level)), "level %s", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
