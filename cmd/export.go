package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/config"
	"github.com/jarmstrongdbrx/data-entry-app/core/database"
	"github.com/jarmstrongdbrx/data-entry-app/feature/editor"

	"github.com/spf13/cobra"
)

var exportOutput string

// exportCmd dumps one table snapshot as JSON.
var exportCmd = &cobra.Command{
	Use:   "export <table>",
	Short: "Export a table snapshot as JSON",
	Args:  cobra.ExactArgs(1),
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

		desc, err := insp.Describe(ctx, args[0])
		if err != nil {
			return err
		}
		snap, err := editor.ReadSnapshot(ctx, db, desc)
		if err != nil {
			return err
		}

		doc := map[string]any{
			"table":       desc.Qualified,
			"primary_key": desc.PrimaryKey,
			"rows":        snap.Rows,
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}

		if exportOutput == "" {
			fmt.Println(string(data))
			return nil
		}
		return os.WriteFile(exportOutput, data, 0o644)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	RootCmd.AddCommand(exportCmd)
}
