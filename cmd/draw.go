/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var drawWait time.Duration

// drawCmd represents the draw command
var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Selects a random holder",
	Long: `Selects one of the holders with equal probability and records it as the
selected wallet. Nothing happens when there is no holder yet.

The draw is committed first and run once its entropy exists, which takes a
few masterchain blocks with the beacon. A draw already committed by the
scheduler is carried on. The draw counts for the schedule as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledgerDependencyInject()

		ctx, cancel := context.WithTimeout(context.Background(), drawWait)
		defer cancel()

		for {
			result, err := drawInteractor.RunDraw(ctx, time.Now())
			if err != nil {
				return err
			}

			if result != nil {
				if !result.Drawn {
					fmt.Println("no holder to draw from")
					return nil
				}
				fmt.Printf("selected wallet: %v (%v of %v)\n", result.Winner.ToRaw(), result.Index+1, result.HolderCount)
				return nil
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("draw is still waiting for its entropy, run draw again to finish it: %w", ctx.Err())
			case <-time.After(2 * time.Second):
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(drawCmd)
	drawCmd.Flags().DurationVar(&drawWait, "wait", 2*time.Minute, "how long to wait for the entropy of a committed draw")
}
