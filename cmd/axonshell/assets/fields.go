package assets

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFieldsCmd(conn *connFlags) *cobra.Command {
	var adapter string

	cmd := &cobra.Command{
		Use:           "fields",
		Short:         "List the fields available for an asset type",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := conn.connect()
			if err != nil {
				return err
			}

			schema, err := svc.Fields(cmd.Context(), requestID())
			if err != nil {
				return err
			}

			adapters := schema.Adapters()
			if adapter != "" {
				if schema.AdapterFields(adapter) == nil {
					return fmt.Errorf("unknown adapter %q: valid adapters: %s",
						adapter, strings.Join(adapters, ", "))
				}
				adapters = []string{adapter}
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADAPTER\tFIELD\tTYPE\tTITLE")
			for _, name := range adapters {
				for _, f := range schema.AdapterFields(name) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, f.NameQual, f.Type, f.Title)
					for _, sub := range f.SubFields {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, sub.NameQual, sub.Type, sub.Title)
					}
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&adapter, "adapter", "", "Only list fields of this adapter")
	return cmd
}
