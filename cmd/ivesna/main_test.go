package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			assert.NoError(t, setupLogger(newContext(level)), level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestExcerpt(t *testing.T) {
	t.Run("short text passes through", func(t *testing.T) {
		assert.Equal(t, "vedenie uctu", excerpt("vedenie uctu", 40))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "a b c", excerpt("a  b\n c", 40))
	})

	t.Run("truncates long text", func(t *testing.T) {
		got := excerpt("úplne pridlhý text o produktoch banky", 10)
		assert.Equal(t, "úplne prid...", got)
	})
}

func TestIngestCommandRequiresFlags(t *testing.T) {
	app := &cli.App{
		Name: "ivesna",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{Name: "pages", Required: true},
				),
			},
		},
	}

	err := app.Run([]string{"ivesna", "ingest", "--db", t.TempDir()})
	require.Error(t, err)
}
