package assets

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCountCmd(conn *connFlags) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:           "count",
		Short:         "Count assets matching a query",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := conn.connect()
			if err != nil {
				return err
			}

			n, err := svc.Count(cmd.Context(), query, requestID())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, n)
			return err
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "AQL query; empty counts all assets")
	return cmd
}
