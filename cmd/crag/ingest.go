package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func IngestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Chunk, embed and store PDF, image or text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}

			for _, path := range args {
				doc, n, err := c.IngestFile(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("error ingesting %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks (document %s)\n", path, n, doc.RID)
			}
			return nil
		},
	}
}
