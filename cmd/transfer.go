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

var transferAmount uint64
var transferUser string
var transferSigner string
var transferRecipient string

// transferCmd represents the transfer command
var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Processes a taxed transfer",
	Long: `Processes a transfer paid by --user. The tax and the developer fee are
deducted from the total supply and the payer is registered as a holder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledgerDependencyInject()

		user, err := domain.ParseIdentity(transferUser)
		if err != nil {
			return fmt.Errorf("invalid user address %q: %w", transferUser, err)
		}

		signer := user
		if transferSigner != "" {
			if signer, err = domain.ParseIdentity(transferSigner); err != nil {
				return fmt.Errorf("invalid signer address %q: %w", transferSigner, err)
			}
		}

		taxWallet, err := flagOrConfigIdentity("", domain.GetTaxWallet(), "tax wallet")
		if err != nil {
			return err
		}
		devWallet, err := flagOrConfigIdentity("", domain.GetDevWallet(), "dev wallet")
		if err != nil {
			return err
		}

		request := domain.TransferRequest{
			Signer:     signer,
			Amount:     transferAmount,
			TaxWallet:  taxWallet,
			DevWallet:  devWallet,
			UserWallet: user,
		}
		if transferRecipient != "" {
			recipient, err := domain.ParseIdentity(transferRecipient)
			if err != nil {
				return fmt.Errorf("invalid recipient address %q: %w", transferRecipient, err)
			}
			request.Recipient = &recipient
		}

		receipt, err := ledgerInteractor.ProcessTransaction(context.Background(), request)
		if err != nil {
			return err
		}

		fmt.Printf("amount:       %v\n", util.TokenString(receipt.Amount))
		fmt.Printf("tax:          %v\n", util.TokenString(receipt.TaxAmount))
		fmt.Printf("dev fee:      %v\n", util.TokenString(receipt.DevFee))
		fmt.Printf("net:          %v\n", util.TokenString(receipt.NetAmount))
		fmt.Printf("total supply: %v\n", util.TokenString(receipt.TotalTokens))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().Uint64Var(&transferAmount, "amount", 0, "amount of tokens")
	transferCmd.Flags().StringVar(&transferUser, "user", "", "paying wallet address")
	transferCmd.Flags().StringVar(&transferSigner, "signer", "", "signer of the request, defaults to --user")
	transferCmd.Flags().StringVar(&transferRecipient, "recipient", "", "wallet receiving the net amount, defaults to --user")
	transferCmd.MarkFlagRequired("amount")
	transferCmd.MarkFlagRequired("user")
}
