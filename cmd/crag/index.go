package main

import (
	"fmt"

	"github.com/siherrmann/crag/database"
	"github.com/spf13/cobra"
)

func IndexCmd(a *app) *cobra.Command {
	var params database.IndexParams

	cmd := &cobra.Command{
		Use:       "index <hnsw|ivfflat>",
		Short:     "Rebuild the vector index on chunk embeddings",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(database.IndexTypeHNSW), string(database.IndexTypeIVFFlat)},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			indexType := database.IndexType(args[0])
			if err := c.ChangeIndexType(cmd.Context(), indexType, params); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "index rebuilt as %s\n", indexType)
			return nil
		},
	}

	cmd.Flags().IntVar(&params.M, "m", 0, "hnsw max connections per layer")
	cmd.Flags().IntVar(&params.EfConstruction, "ef-construction", 0, "hnsw candidate list size during build")
	cmd.Flags().IntVar(&params.Lists, "lists", 0, "ivfflat number of lists")

	return cmd
}
