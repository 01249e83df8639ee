package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/screa/create3-salt-miner/internal/config"
	logpkg "github.com/screa/create3-salt-miner/internal/logger"
	"github.com/screa/create3-salt-miner/pkg/create3"
	minerpkg "github.com/screa/create3-salt-miner/pkg/miner"
	"github.com/screa/create3-salt-miner/pkg/types"
)

var (
	cfg        = config.NewConfig()
	logger     *logpkg.Logger
	deriveSalt string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "create3-miner",
		Short: "CREATE3 vanity salt miner",
		Long: `A command line utility for deriving CREATE3 contract addresses and
mining salts that yield addresses with a chosen hex prefix.
The address depends only on the deployer and the salt, never on the bytecode.`,
	}

	var deriveCmd = &cobra.Command{
		Use:   "derive",
		Short: "Derive the CREATE3 address for a deployer and salt",
		Run:   runDerive,
	}
	deriveCmd.Flags().StringVarP(&cfg.Deployer, "deployer", "d", "", "Deployer address (40 hex chars) (required)")
	deriveCmd.Flags().StringVarP(&deriveSalt, "salt", "s", "", "Salt: 64 hex chars used raw, anything else hashed as UTF-8 (required)")

	var mineCmd = &cobra.Command{
		Use:   "mine",
		Short: "Mine salts whose CREATE3 address starts with a prefix",
		Run:   runMine,
	}
	mineCmd.Flags().StringVarP(&cfg.Deployer, "deployer", "d", "", "Deployer address (40 hex chars) (required)")
	mineCmd.Flags().StringVarP(&cfg.Prefix, "prefix", "p", "", "Address prefix to match (hex, case-insensitive)")
	mineCmd.Flags().StringVarP(&cfg.SaltPrefix, "salt-prefix", "s", "", "Fixed prefix for the salt string itself")
	mineCmd.Flags().IntVarP(&cfg.Count, "count", "n", 1, "Number of distinct salts to mine")
	mineCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	mineCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	mineCmd.Flags().StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")
	mineCmd.Flags().IntVarP(&cfg.LogInterval, "log-interval", "i", 5, "Logging interval in seconds (default: 5)")

	rootCmd.AddCommand(deriveCmd, mineCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDerive(cmd *cobra.Command, args []string) {
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	address, err := create3.DeriveAddress(cfg.Deployer, deriveSalt)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("CREATE3 address: %s\n", address)
}

func runMine(cmd *cobra.Command, args []string) {
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	setupLogging()
	logger.Printf("Starting CREATE3 salt miner with %d workers...", cfg.Workers)
	logger.Printf("Deployer: %s", cfg.Deployer)
	logger.Printf("Target: %s", cfg.GetTargetDescription())

	miner, err := minerpkg.NewMiner(cfg, logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start mining in a goroutine
	resultChan := make(chan []*types.Result, 1)
	go func() {
		resultChan <- miner.MineBatch(context.Background())
	}()

	// Wait for either completion or signal
	select {
	case results := <-resultChan:
		printResults(results)
	case <-sigChan:
		// Interrupted by Ctrl+C
		logger.Println("\nReceived interrupt signal (Ctrl+C). Stopping miners...")
		miner.Stop()
		<-resultChan

		partial := miner.Results()
		if len(partial) > 0 {
			logger.Printf("Found %d of %d result(s) before interrupt:", len(partial), cfg.Count)
			printResults(partial)
		} else {
			logger.Println("Mining stopped by user.")
		}
	}
}

func printResults(results []*types.Result) {
	for i, result := range results {
		if len(results) > 1 {
			logger.Printf("Result %d:", i+1)
		} else {
			logger.Printf("🎉 Found match!")
		}
		logger.Printf("Salt: %s", result.Salt)
		logger.Printf("Hashed salt: 0x%s", result.SaltDigest)
		logger.Printf("Address: %s", result.Address)
		logger.Printf("Attempts: %d", result.Attempts)
		logger.Printf("Duration: %v", result.Duration)

		// Calculate rate safely
		rate := 0.0
		if result.Duration.Seconds() > 0 {
			rate = float64(result.Attempts) / result.Duration.Seconds()
		}
		logger.Printf("Rate: %.2f hashes/sec", rate)
	}
}

func setupLogging() {
	if cfg.LogFile != "" {
		var err error
		logger, err = logpkg.NewFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
	} else {
		logger = logpkg.New()
	}
}
