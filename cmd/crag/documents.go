package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func DocumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage ingested documents",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List ingested documents",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.openStore()
				if err != nil {
					return err
				}
				docs, err := c.ListDocuments(cmd.Context())
				if err != nil {
					return err
				}
				for _, doc := range docs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", doc.RID, doc.Title, doc.Source)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <rid>",
			Short: "Delete a document and its chunks",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rid, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid document id %q: %w", args[0], err)
				}
				c, err := a.openStore()
				if err != nil {
					return err
				}
				if err := c.DeleteDocument(cmd.Context(), rid); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", rid)
				return nil
			},
		},
	)

	return cmd
}
