// Package command provides CLI command definitions for metalmesh-ctl.
package command

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metalmesh/internal/ctl/output"
	"github.com/yndnr/metalmesh/internal/rpc"
)

// NodeCommand returns the node subcommand group.
func NodeCommand() *cli.Command {
	return &cli.Command{
		Name:    "node",
		Aliases: []string{"n"},
		Usage:   "Node inventory commands",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all nodes",
				Action: nodeList,
			},
			{
				Name:      "show",
				Usage:     "Show a node by UUID or name",
				ArgsUsage: "<node>",
				Action:    nodeShow,
			},
			{
				Name:      "create",
				Usage:     "Register a new node",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "driver",
						Usage:    "Hardware driver (e.g., ipmi, redfish)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "extra",
						Usage: "Extra properties as a JSON object",
					},
				},
				Action: nodeCreate,
			},
			{
				Name:      "delete",
				Usage:     "Remove a node from the inventory",
				ArgsUsage: "<node>",
				Action:    nodeDelete,
			},
			{
				Name:      "power",
				Usage:     "Change the power state of a node",
				ArgsUsage: "<node> <target>",
				Action:    nodePower,
			},
		},
	}
}

func nodeList(c *cli.Context) error {
	client, cc, err := prepare(c)
	if err != nil {
		return err
	}

	result, err := client.Call(c.Context, cc, "list_nodes", rpc.Args{})
	if err != nil {
		return err
	}

	if c.String("output") == string(output.FormatTable) {
		if table, ok := nodeTable(result); ok {
			return table.Render(c.App.Writer)
		}
	}
	return render(c, result)
}

func nodeShow(c *cli.Context) error {
	node, err := requiredArg(c, 0, "node")
	if err != nil {
		return err
	}

	client, cc, err := prepare(c)
	if err != nil {
		return err
	}

	result, err := client.Call(c.Context, cc, "get_node", rpc.Args{"node_id": node})
	if err != nil {
		return err
	}
	return render(c, result)
}

func nodeCreate(c *cli.Context) error {
	name, err := requiredArg(c, 0, "name")
	if err != nil {
		return err
	}

	args := rpc.Args{
		"name":   name,
		"driver": c.String("driver"),
	}

	if raw := c.String("extra"); raw != "" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			return fmt.Errorf("invalid --extra: %w", err)
		}
		args["extra"] = extra
	}

	client, cc, err := prepare(c)
	if err != nil {
		return err
	}

	result, err := client.Call(c.Context, cc, "create_node", args)
	if err != nil {
		return err
	}
	return render(c, result)
}

func nodeDelete(c *cli.Context) error {
	node, err := requiredArg(c, 0, "node")
	if err != nil {
		return err
	}

	client, cc, err := prepare(c)
	if err != nil {
		return err
	}

	if _, err := client.Call(c.Context, cc, "delete_node", rpc.Args{"node_id": node}); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "node %s deleted\n", node)
	return nil
}

func nodePower(c *cli.Context) error {
	node, err := requiredArg(c, 0, "node")
	if err != nil {
		return err
	}
	target, err := requiredArg(c, 1, "target")
	if err != nil {
		return err
	}

	client, cc, err := prepare(c)
	if err != nil {
		return err
	}

	result, err := client.Call(c.Context, cc, "change_node_power_state", rpc.Args{
		"node_id": node,
		"target":  target,
	})
	if err != nil {
		return err
	}
	return render(c, result)
}

// requiredArg fetches a positional argument or fails with usage help.
func requiredArg(c *cli.Context, index int, name string) (string, error) {
	v := c.Args().Get(index)
	if v == "" {
		return "", fmt.Errorf("missing required argument <%s>", name)
	}
	return v, nil
}

// nodeTable shapes a list_nodes result into a listing table. Results
// arrive as generic JSON maps.
func nodeTable(result any) (*output.Table, bool) {
	listing, ok := result.(map[string]any)
	if !ok {
		return nil, false
	}
	nodes, ok := listing["nodes"].([]any)
	if !ok {
		return nil, false
	}

	table := &output.Table{
		Headers: []string{"UUID", "NAME", "DRIVER", "POWER", "PROVISION"},
	}
	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		table.AddRow(
			stringField(node, "uuid"),
			stringField(node, "name"),
			stringField(node, "driver"),
			stringField(node, "power_state"),
			stringField(node, "provision_state"),
		)
	}
	return table, true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
