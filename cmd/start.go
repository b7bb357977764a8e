/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxtoken/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the ledger tasks",
	Long: `Starts the periodic draw and the settlement of staged legs, and serves
metrics. It runs until it receives SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		ledgerDependencyInject()
		settlementDependencyInject()

		ctx, cancel := context.WithCancel(context.Background())
		quit := make(chan bool)

		// Draw checks are cheap, the interval only bounds how late a due draw runs.
		drawTicker := schedule(func() { draw(ctx) }, drawCheckInterval(domain.GetDrawInterval()), quit)
		settleTicker := schedule(func() { settle(ctx) }, domain.GetSettleInterval(), quit)

		server := serveMetrics(domain.GetMetricsAddress())

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		sugar.Infof("Got signal '%v', stopping", s)

		drawTicker.Stop()
		settleTicker.Stop()
		close(quit)
		cancel()

		if server != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := server.Shutdown(shutdownCtx); err != nil {
				sugar.Errorf("🔴 stopping metrics server - %v", err.Error())
			}
		}
		sugar.Sync()
	},
}

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				task()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

func drawCheckInterval(drawInterval time.Duration) time.Duration {
	check := time.Minute
	if drawInterval < check {
		check = drawInterval
	}
	return check
}

func draw(ctx context.Context) {
	result, err := drawInteractor.RunDueDraw(ctx, time.Now())
	if err != nil {
		sugar.Errorf("🔴 running draw - %v", err.Error())
		return
	}
	if result != nil && result.Drawn {
		sugar.Infof("draw done [winner: %v]", result.Winner.ToRaw())
	}
}

func settle(ctx context.Context) {
	sent, err := settlementInteractor.SettlePending(ctx)
	if err != nil {
		sugar.Errorf("🔴 settling legs - %v", err.Error())
		return
	}
	if sent > 0 {
		sugar.Infof("%v legs settled", sent)
	}
}

func serveMetrics(address string) *http.Server {
	if address == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infof("serving metrics on %v", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorf("🔴 serving metrics - %v", err.Error())
		}
	}()
	return server
}

func init() {
	rootCmd.AddCommand(startCmd)
}
