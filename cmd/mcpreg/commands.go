package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	mcpregistry "github.com/wagiedev/mcp-registry-go"
)

func (a *app) newServersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List configured servers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range slices.Sorted(maps.Keys(a.cfg.Servers)) {
				server := a.cfg.Servers[name]
				fmt.Fprintf(a.out, "%s\t%s\n", name, strings.Join(append([]string{server.Command}, server.Args...), " "))
			}

			return nil
		},
	}
}

func (a *app) newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools <server>",
		Short: "List the tools a server advertises",
		Long: `Start the named server, list its tools as JSON and stop it.

Examples:
  mcpreg tools bmi
  mcpreg tools bmi | jq '.[].name'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			return a.withRegistry(cmd.Context(), func(reg mcpregistry.Registry) error {
				if err := a.connect(cmd.Context(), reg, name); err != nil {
					return err
				}

				tools, err := reg.ListTools(cmd.Context(), name)
				if err != nil {
					return err
				}

				return writeJSON(a.out, tools)
			})
		},
	}
}

var (
	// errToolFailed is returned when the tool ran but reported an error.
	errToolFailed = errors.New("tool reported an error")

	errNoServerReachable = errors.New("no server could be reached")
)

func (a *app) newCallCmd() *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <server> <tool>",
		Short: "Call a tool and print its result",
		Long: `Start the named server, call one tool with JSON arguments and print the
text of the result. The command fails if the tool reports an error.

Examples:
  mcpreg call bmi calculate_bmi --args '{"height": 1.75, "weight": 70}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, tool := args[0], args[1]

			var toolArgs map[string]any
			if rawArgs != "" {
				if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}

			return a.withRegistry(cmd.Context(), func(reg mcpregistry.Registry) error {
				if err := a.connect(cmd.Context(), reg, server); err != nil {
					return err
				}

				result, err := reg.CallTool(cmd.Context(), server, tool, toolArgs)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, mcpregistry.ResultText(result))

				if mcpregistry.IsToolError(result) {
					return fmt.Errorf("%s/%s: %w", server, tool, errToolFailed)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&rawArgs, "args", "a", "", "tool arguments as a JSON object")

	return cmd
}

func (a *app) newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Connect every configured server and list all tools",
		Long: `Start every configured server concurrently and print a JSON report with
the status and tools of each. Servers that fail to start are reported with
their error; the command fails only if no server could be reached.

Examples:
  mcpreg discover
  mcpreg discover | jq '.mcpServers[] | select(.status == "failed")'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRegistry(cmd.Context(), func(reg mcpregistry.Registry) error {
				status := reg.Discover(cmd.Context(), a.cfg.Servers)

				if err := writeJSON(a.out, status); err != nil {
					return err
				}

				failed := status.Failed()
				for _, server := range failed {
					fmt.Fprintf(a.errOut, "%s: %s\n", server.Name, server.Error)
				}

				if len(failed) > 0 && len(failed) == len(status.MCPServers) {
					return errNoServerReachable
				}

				return nil
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
