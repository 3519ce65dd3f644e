package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/crag"
	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
	"github.com/spf13/cobra"
)

type flags struct {
	envFile    string
	strategy   string
	escalation string
	topK       int
}

// app is opened lazily by the subcommands that need the store.
type app struct {
	flags      flags
	config     *model.Config
	crag       *crag.Crag
	closeStore func() error
}

// Execute runs the command line and closes the store afterwards, also when
// the command failed.
func Execute(args []string) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	return execute(root, a)
}

func execute(root *cobra.Command, a *app) error {
	err := root.Execute()
	return errors.Join(err, a.close())
}

func RootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "crag",
		Short:         "Corrective retrieval augmented generation over local documents and the web",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.envFile, "env-file", "", "path to a .env file (default: ./.env if present)")
	root.PersistentFlags().StringVar(&a.flags.strategy, "strategy", "", "quality strategy: llm or heuristic")
	root.PersistentFlags().StringVar(&a.flags.escalation, "escalation", "", "web escalation policy: always or on_demand")
	root.PersistentFlags().IntVar(&a.flags.topK, "top-k", 0, "number of local chunks to retrieve")

	root.AddCommand(
		IngestCmd(a),
		QueryCmd(a),
		ChatCmd(a),
		DocumentsCmd(a),
		IndexCmd(a),
	)

	return root
}

func (a *app) loadConfig() (*model.Config, error) {
	if a.config != nil {
		return a.config, nil
	}

	var err error
	if a.flags.envFile != "" {
		err = helper.LoadEnvFile(a.flags.envFile)
	} else {
		err = helper.LoadEnvFile()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	config, err := model.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if a.flags.strategy != "" {
		config.QualityStrategy = model.QualityStrategyType(a.flags.strategy)
	}
	if a.flags.escalation != "" {
		config.Escalation = model.EscalationPolicy(a.flags.escalation)
	}
	if a.flags.topK != 0 {
		config.TopK = a.flags.topK
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a.config = config
	return config, nil
}

// open connects to the store and sets up the default ingestion pipeline.
func (a *app) open() (*crag.Crag, error) {
	c, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if c.Pipeline == nil {
		if err := c.UseDefaultPipeline(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// openStore connects to the store without loading an embedder.
func (a *app) openStore() (*crag.Crag, error) {
	if a.crag != nil {
		return a.crag, nil
	}

	config, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	// Logs go to stderr so command output stays clean on stdout
	logger := helper.NewLogger(os.Stderr, slog.LevelInfo)
	c, err := crag.NewWithLogger(dbConfig, config, logger)
	if err != nil {
		return nil, err
	}
	a.crag = c
	a.closeStore = c.Close
	return c, nil
}

func (a *app) close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.crag = nil
	a.closeStore = nil
	return err
}
