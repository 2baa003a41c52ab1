// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/albumarchitect/core/config"
	"github.com/albumarchitect/core/driver"
)

var (
	photosPath          string
	cacheFile           string
	verbosity           int
	analyzeDuplicates   bool
	checkSimilars       []string
	outputPath          string
	configPath          string
	similarityThreshold float64
	maxNeighbours       int
)

func init() {
	analyzeCmd.Flags().StringVarP(&photosPath, "photos-path", "p", "", "Root directory to index (required)")
	analyzeCmd.Flags().StringVarP(&cacheFile, "cache-file", "c", ".albumarchitect.cache", "Path to the persistent cache")
	analyzeCmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity; repeatable")
	analyzeCmd.Flags().BoolVarP(&analyzeDuplicates, "analyze-duplicates", "d", false, "Include duplicates in the report")
	analyzeCmd.Flags().StringArrayVarP(&checkSimilars, "check-similars", "s", nil, "Query image path; repeatable")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report destination (default stdout)")
	analyzeCmd.Flags().StringVar(&configPath, "config", "", "Optional HCL config file")
	analyzeCmd.Flags().Float64Var(&similarityThreshold, "similarity-threshold", 0, "Override the similarity threshold")
	analyzeCmd.Flags().IntVar(&maxNeighbours, "max-neighbours", 0, "Override the max neighbour count")
	analyzeCmd.MarkFlagRequired("photos-path")

	rootCmd.AddCommand(analyzeCmd)
}

var rootCmd = &cobra.Command{
	Use:   "albumarchitect",
	Short: "Index a photo directory and report duplicates and similarities",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Walk a photo directory, build a similarity index, and emit a report",
	RunE:  runAnalyze,
}

func setupLogging() {
	level := slog.LevelInfo
	if verbosity >= 1 {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfgPath := configPath
	explicit := cfgPath != ""
	if cfgPath == "" {
		cfgPath = config.DefaultFileName
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		return fmt.Errorf("albumarchitect: load config: %w", err)
	}

	opts := driver.Options{
		PhotosPath:          photosPath,
		CacheFile:           cacheFile,
		AnalyzeDuplicates:   analyzeDuplicates,
		CheckSimilars:       checkSimilars,
		SimilarityThreshold: similarityThreshold,
		MaxNeighbours:       maxNeighbours,
	}
	applyConfigDefaults(&opts, cfg, cmd.Flags().Changed)

	report, err := driver.Run(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("albumarchitect: %w", err)
	}

	return writeReport(report, outputPath)
}

// applyConfigDefaults fills in Options fields from cfg for every flag that
// was not given on the command line (changed reports whether a flag was
// set). CLI flags that were actually set always win.
func applyConfigDefaults(opts *driver.Options, cfg *config.File, changed func(name string) bool) {
	if !changed("cache-file") && cfg.CacheFile != "" {
		opts.CacheFile = cfg.CacheFile
	}
	if !changed("analyze-duplicates") && cfg.AnalyzeDuplicates {
		opts.AnalyzeDuplicates = true
	}
	if !changed("similarity-threshold") && cfg.SimilarityThreshold != 0 {
		opts.SimilarityThreshold = cfg.SimilarityThreshold
	}
	if !changed("max-neighbours") && cfg.MaxNeighbours != 0 {
		opts.MaxNeighbours = cfg.MaxNeighbours
	}
}

func writeReport(report *driver.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("albumarchitect: marshal report: %w", err)
	}

	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrReportDestinationInvalid, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrReportDestinationInvalid, err)
	}
	return nil
}

// Execute runs the root command, exiting non-zero on any error per the
// CLI's exit-code contract.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
