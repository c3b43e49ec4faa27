package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/config"
	"github.com/jarmstrongdbrx/data-entry-app/core/database"

	"github.com/spf13/cobra"
)

// tablesCmd lists the editable tables and their primary keys.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List editable tables",
	Long:  `Lists every table in the configured schema with its primary key columns. Tables without a primary key are reported as not editable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := database.Connect(cfg.Warehouse)
		if err != nil {
			return err
		}

		ctx := context.Background()
		insp := catalog.NewInspector(db, cfg.Warehouse.Schema)

		names, err := insp.ListTables(ctx)
		if err != nil {
			return err
		}

		for _, name := range names {
			desc, err := insp.Describe(ctx, name)
			if err != nil {
				var npk *catalog.NoPrimaryKeyError
				if errors.As(err, &npk) {
					fmt.Printf("%-40s (no primary key, not editable)\n", name)
					continue
				}
				return err
			}
			fmt.Printf("%-40s pk(%s)\n", desc.Qualified, strings.Join(desc.PrimaryKey, ", "))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
}
