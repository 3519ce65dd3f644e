package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/siherrmann/crag/model"
	"github.com/spf13/cobra"
)

func QueryCmd(a *app) *cobra.Command {
	var answer bool

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Retrieve, judge and fuse context for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			config := c.Config()
			query := strings.Join(args, " ")

			var result *model.QueryResult
			if answer {
				result, err = c.Answer(cmd.Context(), query, config.QueryConfig())
			} else {
				result, err = c.Query(cmd.Context(), query, config.QueryConfig())
			}
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&answer, "answer", false, "generate an answer from the fused context")

	return cmd
}

func printResult(out io.Writer, result *model.QueryResult) {
	v := result.Verdict
	fmt.Fprintf(out, "Retrieved %d chunks\n", len(result.Chunks))
	fmt.Fprintf(out, "Verdict (%s): score %.1f, sufficient %t, web search %t\n", v.Strategy, v.RelevanceScore, v.IsSufficient, v.RequiresWebSearch)
	if v.Reasoning != "" {
		fmt.Fprintf(out, "Reasoning: %s\n", v.Reasoning)
	}
	if result.Context.WebSearched {
		fmt.Fprintf(out, "Web query: %s\n", result.Context.WebQuery)
	}
	if result.Context.WebDegraded {
		fmt.Fprintln(out, "Web search unavailable, continuing with local context")
	}
	fmt.Fprintf(out, "\n%s\n", result.Context.Combined)
	if result.Answer != "" {
		fmt.Fprintf(out, "\nAnswer:\n%s\n", result.Answer)
	}
}
