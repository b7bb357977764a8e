/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"taxtoken/domain"
	"taxtoken/domain/util"

	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the ledger state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledgerDependencyInject()

		state, err := ledgerInteractor.State(context.Background())
		if err != nil {
			return err
		}

		printState(state)
		return nil
	},
}

func printState(state *domain.LedgerState) {
	hash, err := domain.StateHash(state)
	if err != nil {
		hash = err.Error()
	}

	fmt.Printf("------------- LEDGER %v -----------------\n", ledgerInteractor.Address())
	fmt.Printf("authority:    %v\n", state.Authority.ToRaw())
	fmt.Printf("tax:          %v\n", util.PercentString(state.TaxPercentage))
	fmt.Printf("total supply: %v\n", util.TokenString(state.TotalTokens))
	if state.IsSelected() {
		fmt.Printf("selected:     %v\n", state.SelectedWallet.ToRaw())
	} else {
		fmt.Printf("selected:     -\n")
	}
	fmt.Printf("state hash:   %v\n", hash)

	max := 10
	fmt.Printf("holders:      %v\n", len(state.Holders))
	for i, holder := range state.Holders {
		if i >= max {
			fmt.Printf("  and %v more...\n", len(state.Holders)-max)
			break
		}
		fmt.Printf("  #%03d - %v\n", i+1, holder.ToRaw())
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
