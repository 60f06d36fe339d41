// Package command provides CLI command definitions for metalmesh-ctl.
package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/metalmesh/internal/rpc"
)

// PingCommand returns the liveness probe command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Probe the conductor and show its topic and uptime",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "cast",
				Usage: "Send as a notification and expect no response",
			},
		},
		Action: ping,
	}
}

func ping(c *cli.Context) error {
	client, cc, err := prepare(c)
	if err != nil {
		return err
	}

	if c.Bool("cast") {
		return client.Cast(c.Context, cc, "ping", rpc.Args{})
	}

	result, err := client.Call(c.Context, cc, "ping", rpc.Args{})
	if err != nil {
		return err
	}
	return render(c, result)
}
