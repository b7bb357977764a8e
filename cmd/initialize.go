/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"taxtoken/domain"

	"github.com/spf13/cobra"
)

var initAuthority string
var initTax int

// initializeCmd represents the initialize command
var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Creates the ledger",
	Long: `Creates the ledger with the initial supply, the given authority and tax
percentage. A ledger can only be initialized once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledgerDependencyInject()

		authority, err := flagOrConfigIdentity(initAuthority, domain.GetAuthority(), "authority")
		if err != nil {
			return err
		}

		tax := domain.GetTaxPercentage()
		if cmd.Flags().Changed("tax") {
			tax = initTax
		}

		state, err := ledgerInteractor.Initialize(context.Background(), authority, tax)
		if err != nil {
			return err
		}

		printState(state)
		return nil
	},
}

// flagOrConfigIdentity parses value when it is set, otherwise falls back to
// the configured identity.
func flagOrConfigIdentity(value string, configured *domain.Identity, name string) (domain.Identity, error) {
	if value != "" {
		id, err := domain.ParseIdentity(value)
		if err != nil {
			return domain.Identity{}, fmt.Errorf("invalid %v address %q: %w", name, value, err)
		}
		return id, nil
	}
	if configured == nil {
		return domain.Identity{}, fmt.Errorf("%v address is neither given nor configured", name)
	}
	return *configured, nil
}

func init() {
	rootCmd.AddCommand(initializeCmd)

	initializeCmd.Flags().StringVar(&initAuthority, "authority", "", "authority address, defaults to authority_address")
	initializeCmd.Flags().IntVar(&initTax, "tax", 0, "tax percentage, defaults to tax_percentage")
}
