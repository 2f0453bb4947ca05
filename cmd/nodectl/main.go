package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remna-tg-admin/internal/config"
	"remna-tg-admin/internal/constants"
)

// nodectl maintains the nodes document the bot reads its node inventory
// from. It edits the file in place; the bot picks the change up on restart.

func main() {
	root := &cobra.Command{
		Use:          "nodectl",
		Short:        "Manage the bot's node inventory",
		SilenceUsage: true,
	}

	var nodesFile string
	root.PersistentFlags().StringVar(&nodesFile, "file", defaultNodesFile(), "path to the nodes document")

	root.AddCommand(
		listCmd(&nodesFile),
		addLocalCmd(&nodesFile),
		addRemoteCmd(&nodesFile),
		removeCmd(&nodesFile),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultNodesFile() string {
	if path := os.Getenv("NODES_FILE"); path != "" {
		return path
	}
	return "nodes.yml"
}

func listCmd(nodesFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := config.LoadNodes(*nodesFile)
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Println("no nodes configured")
				return nil
			}
			for _, name := range nodes.Names() {
				node := nodes[name]
				switch node.Type {
				case config.NodeTypeRemote:
					fmt.Printf("%s\tremote\t%s\n", name, node.URL)
				default:
					fmt.Printf("%s\t%s\n", name, node.Type)
				}
			}
			return nil
		},
	}
}

func addLocalCmd(nodesFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-local <name>",
		Short: "Add a node running on this host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return upsertNode(*nodesFile, args[0], config.NodeConfig{
				Type: config.NodeTypeLocal,
			})
		},
	}
}

func addRemoteCmd(nodesFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-remote <name> <ip> <token>",
		Short: "Add a node reachable via its HTTP sidecar",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ip, token := args[0], args[1], args[2]
			return upsertNode(*nodesFile, name, config.NodeConfig{
				Type:  config.NodeTypeRemote,
				URL:   fmt.Sprintf("http://%s:%d/logs", ip, constants.NodeSidecarPort),
				Token: token,
			})
		},
	}
}

func removeCmd(nodesFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := config.LoadNodes(*nodesFile)
			if err != nil {
				return err
			}
			if _, ok := nodes[args[0]]; !ok {
				return fmt.Errorf("node %q not found", args[0])
			}
			delete(nodes, args[0])
			if err := config.SaveNodes(*nodesFile, nodes); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}

func upsertNode(path, name string, node config.NodeConfig) error {
	nodes, err := config.LoadNodes(path)
	if err != nil {
		return err
	}
	nodes[name] = node
	if err := config.SaveNodes(path, nodes); err != nil {
		return err
	}
	fmt.Printf("saved %s (%s)\n", name, node.Type)
	return nil
}
