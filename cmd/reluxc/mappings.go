package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reluxc/internal/mapping"
)

var (
	mappingsFormat string
	mappingsFields bool
)

func init() {
	mappingsCmd.Flags().StringVar(&mappingsFormat, "format", "table", "output format (table|json)")
	mappingsCmd.Flags().BoolVar(&mappingsFields, "fields", false, "include per-field alignment")
}

var mappingsCmd = &cobra.Command{
	Use:   "mappings [node...]",
	Short: "Dump the node alignment catalog",
	Long:  `Shows which host-node categories and fields plugins can touch, and how each one renders on the Babel and SWC side.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes := mapping.Nodes()
		if len(args) > 0 {
			nodes = nodes[:0:0]
			for _, name := range args {
				m, ok := mapping.Node(name)
				if !ok {
					return fmt.Errorf("no alignment entry for node %q", name)
				}
				nodes = append(nodes, *m)
			}
		}
		switch mappingsFormat {
		case "table":
			renderMappingTable(cmd, nodes)
			return nil
		case "json":
			return renderMappingJSON(cmd, nodes)
		}
		return fmt.Errorf("unsupported format %q (must be table or json)", mappingsFormat)
	},
}

func renderMappingTable(cmd *cobra.Command, nodes []mapping.NodeMapping) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tBABEL\tSWC\tSWC VISITOR")
	for _, n := range nodes {
		swc := n.Swc
		if n.SwcEnum != "" {
			swc = fmt.Sprintf("%s (%s::%s)", n.Swc, n.SwcEnum, n.SwcVariant)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Name, n.Babel, swc, n.SwcVisitor)
		if !mappingsFields {
			continue
		}
		for _, f := range mapping.FieldsOf(n.Name) {
			extra := ""
			if f.ReadConv != mapping.ConvNone || f.WriteConv != mapping.ConvNone {
				extra = fmt.Sprintf(" [read %s, write %s]", f.ReadConv, f.WriteConv)
			}
			fmt.Fprintf(tw, "  .%s\t.%s\t.%s %s%s\t\n", f.Field, f.Babel, f.Swc, f.SwcType, extra)
		}
	}
	tw.Flush()
}

func renderMappingJSON(cmd *cobra.Command, nodes []mapping.NodeMapping) error {
	type fieldEntry struct {
		Field     string `json:"field"`
		Babel     string `json:"babel"`
		Swc       string `json:"swc"`
		SwcType   string `json:"swc_type"`
		Optional  bool   `json:"optional,omitempty"`
		ReadConv  string `json:"read_conv,omitempty"`
		WriteConv string `json:"write_conv,omitempty"`
	}
	type nodeEntry struct {
		Name       string       `json:"name"`
		Babel      string       `json:"babel"`
		Swc        string       `json:"swc"`
		SwcEnum    string       `json:"swc_enum,omitempty"`
		SwcVariant string       `json:"swc_variant,omitempty"`
		SwcVisitor string       `json:"swc_visitor"`
		Fields     []fieldEntry `json:"fields,omitempty"`
	}
	out := make([]nodeEntry, 0, len(nodes))
	for _, n := range nodes {
		entry := nodeEntry{
			Name:       n.Name,
			Babel:      n.Babel,
			Swc:        n.Swc,
			SwcEnum:    n.SwcEnum,
			SwcVariant: n.SwcVariant,
			SwcVisitor: n.SwcVisitor,
		}
		if mappingsFields {
			for _, f := range mapping.FieldsOf(n.Name) {
				fe := fieldEntry{
					Field:    f.Field,
					Babel:    f.Babel,
					Swc:      f.Swc,
					SwcType:  f.SwcType,
					Optional: f.Optional,
				}
				if f.ReadConv != mapping.ConvNone {
					fe.ReadConv = f.ReadConv.String()
				}
				if f.WriteConv != mapping.ConvNone {
					fe.WriteConv = f.WriteConv.String()
				}
				entry.Fields = append(entry.Fields, fe)
			}
		}
		out = append(out, entry)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
