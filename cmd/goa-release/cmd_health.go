package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the knowledge graph and publish target",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			allOK := true

			st, err := newStore(logger)
			if err != nil {
				fmt.Printf("Graph (%s): FAIL (%v)\n", cfg.Graph.Backend, err)
				allOK = false
			} else {
				defer func() { _ = st.Close() }()
				if err := st.Ping(ctx); err != nil {
					fmt.Printf("Graph (%s): FAIL (%v)\n", cfg.Graph.Backend, err)
					allOK = false
				} else {
					fmt.Printf("Graph (%s): OK\n", cfg.Graph.Backend)
				}
			}

			if _, err := newPublisher(ctx, logger); err != nil {
				fmt.Printf("Publish (%s): FAIL (%v)\n", cfg.Publish.Driver, err)
				allOK = false
			} else {
				fmt.Printf("Publish (%s): OK\n", cfg.Publish.Driver)
			}

			if !allOK {
				return fmt.Errorf("one or more health checks failed")
			}
			return nil
		},
	}
}
