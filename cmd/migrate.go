/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"taxtoken/domain"
	"taxtoken/interface/repository"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !domain.HasDatabase() {
			return fmt.Errorf("⛔️ service_db_uri must be set to migrate")
		}

		ledgerDependencyInject()

		err := repository.CreateSchema(context.Background(), dbHandler)
		if err != nil {
			return err
		}

		sugar.Infof("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
