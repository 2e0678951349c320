package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clog "github.com/panbanda/clonescan/internal/log"
)

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	noColor      bool
	pprofPrefix  string
	pprofCPUFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "clonescan",
	Short: "Find duplicated code across a repository",
	Long: `clonescan finds maximal blocks of identical source lines repeated across
files. Comments, blank lines, whitespace and import lines are ignored, and
every match is confirmed by comparing text.

Blocks seen at three or more places are critical (Rule of Three); blocks
seen exactly twice are tolerable.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		clog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
		if pprofPrefix != "" {
			f, err := os.Create(pprofPrefix + ".cpu.pprof")
			if err != nil {
				return fmt.Errorf("failed to create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				return fmt.Errorf("failed to start CPU profile: %w", err)
			}
			pprofCPUFile = f
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofPrefix == "" {
			return nil
		}
		pprof.StopCPUProfile()
		if pprofCPUFile != nil {
			pprofCPUFile.Close()
			pprofCPUFile = nil
			color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
		}

		memFile, err := os.Create(pprofPrefix + ".mem.pprof")
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer memFile.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(memFile); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress and informational notices")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")
}
