package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rickchristie/travelkit/tools"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const outputTable = "table"

func newToolsCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			catalog := e.registry.Catalog()
			if output != outputTable {
				return writeEncoded(cmd.OutOrStdout(), map[string]any{"tools": catalog}, output)
			}

			data := pterm.TableData{{"Tool", "Arguments", "Description"}}
			for _, entry := range catalog {
				data = append(data, []string{entry.Name, describeArgs(entry.Parameters), entry.Description})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return cmd
}

func newCallCmd(opts *options) *cobra.Command {
	var (
		rawArgs string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call one tool with JSON arguments",
		Example: `  travelkit call search_flights --args '{"origin":"NYC","destination":"PAR","date":"2025-05-30"}'
  travelkit call get_booking_status --args '{"booking_id":"flight-AF70-20250530"}' -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			name := positional[0]

			args := map[string]any{}
			if strings.TrimSpace(rawArgs) != "" {
				if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
					return fmt.Errorf("--args must be a JSON object: %w", err)
				}
			}

			e, err := opts.newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.closeLog()

			if !e.registry.Has(name) {
				return fmt.Errorf("unknown tool %q (available: %s)", name, strings.Join(e.registry.Names(), ", "))
			}

			res := e.registry.Call(cmd.Context(), name, args)
			if err := writeResult(cmd.OutOrStdout(), res, output); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("%s failed: %s", name, res.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawArgs, "args", "a", "", "tool arguments as a JSON object")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return cmd
}

// writeResult prints res. Search results print as a table in table mode; everything else
// falls back to YAML.
func writeResult(w io.Writer, res *tools.CallResult, output string) error {
	if output != outputTable {
		f, err := tools.ParseFormat(output)
		if err != nil {
			return err
		}
		text, err := tools.Render(res, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.TrimRight(text, "\n"))
		return nil
	}

	if !res.OK() {
		fmt.Fprintln(w, pterm.Error.Sprint(res.Message))
		if res.Kind != "" {
			fmt.Fprintf(w, "kind: %s\n", res.Kind)
		}
		if res.Field != "" {
			fmt.Fprintf(w, "field: %s\n", res.Field)
		}
		return nil
	}

	fmt.Fprintln(w, pterm.Success.Sprint(res.Message))
	if len(res.Columns) > 0 {
		data := pterm.TableData{res.Columns}
		data = append(data, res.Rows...)
		table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
		fmt.Fprintln(w, table)
		return nil
	}

	rest := *res
	rest.Status, rest.Message = "", ""
	text, err := tools.Render(&rest, tools.FormatYAML)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	return nil
}

func writeEncoded(w io.Writer, v any, output string) error {
	f, err := tools.ParseFormat(output)
	if err != nil {
		return err
	}
	var data []byte
	switch f {
	case tools.FormatYAML:
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))
	return nil
}

// describeArgs lists schema properties, required ones marked with '*'.
func describeArgs(params map[string]any) string {
	props, _ := params["properties"].(map[string]any)
	required := map[string]bool{}
	switch req := params["required"].(type) {
	case []string:
		for _, r := range req {
			required[r] = true
		}
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		if required[name] {
			name += "*"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
