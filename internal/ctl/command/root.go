// Package command provides CLI command definitions for metalmesh-ctl.
package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metalmesh/internal/rpc"
	"github.com/yndnr/metalmesh/internal/ctl/output"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "metalmesh-ctl",
		Usage:   "MetalMesh conductor command-line client",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			NodeCommand(),
			PingCommand(),
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "topic",
			Aliases: []string{"t"},
			Usage:   "Conductor topic (e.g., conductor.localhost:8089)",
			EnvVars: []string{"METALMESH_TOPIC"},
			Value:   "conductor.localhost:8089",
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Basic-Auth username",
			EnvVars: []string{"METALMESH_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Basic-Auth password",
			EnvVars: []string{"METALMESH_PASSWORD"},
		},
		&cli.BoolFlag{
			Name:    "use-ssl",
			Usage:   "Use HTTPS for the RPC channel",
			EnvVars: []string{"METALMESH_USE_SSL"},
		},
		&cli.StringFlag{
			Name:    "cafile",
			Usage:   "CA bundle to trust instead of the system roots",
			EnvVars: []string{"METALMESH_CAFILE"},
		},
		&cli.StringFlag{
			Name:  "rpc-version",
			Usage: "Pin an RPC API version for every request",
		},
		&cli.StringFlag{
			Name:  "version-cap",
			Usage: "Highest RPC API version this client may request",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "HTTP round-trip timeout",
			Value: 60 * time.Second,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
	}
}

// prepare builds the RPC client and a call context for the configured
// topic.
func prepare(c *cli.Context) (*rpc.Client, *rpc.CallContext, error) {
	strategy := rpc.AuthNone
	if c.String("username") != "" {
		strategy = rpc.AuthBasic
	}

	client, err := rpc.NewClient(rpc.ClientConfig{
		UseSSL:       c.Bool("use-ssl"),
		CAFile:       c.String("cafile"),
		AuthStrategy: strategy,
		Username:     c.String("username"),
		Password:     c.String("password"),
		VersionCap:   c.String("version-cap"),
		Timeout:      c.Duration("timeout"),
	})
	if err != nil {
		return nil, nil, err
	}

	cc, err := client.Prepare(c.String("topic"), c.String("rpc-version"))
	if err != nil {
		return nil, nil, err
	}

	return client, cc, nil
}

// render writes a call result in the requested format.
func render(c *cli.Context, data any) error {
	formatter := output.NewFormatter(output.Format(c.String("output")))
	return formatter.Format(os.Stdout, data)
}
