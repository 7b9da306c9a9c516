package main

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sibexico/HexPager/simulator"
)

type runOptions struct {
	configPath  string
	frames      int
	pages       int
	refs        string
	refsFile    string
	swapLog     string
	swapFormat  string
	compression string
	onInvalid   string
	noColor     bool
	check       bool
	logLevel    string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a simulation. References come from --refs or --refs-file; without
either, frames, pages, sequence length and references are read from stdin,
with prompts when stdin is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "JSON config file (default: environment and .env)")
	f.IntVarP(&opts.frames, "frames", "f", 0, "number of physical frames")
	f.IntVarP(&opts.pages, "pages", "p", 0, "number of pages in the virtual address space")
	f.StringVarP(&opts.refs, "refs", "r", "", "page references separated by spaces or commas")
	f.StringVar(&opts.refsFile, "refs-file", "", "file with whitespace-separated page references")
	f.StringVar(&opts.swapLog, "swap-log", "", "swap log path")
	f.StringVar(&opts.swapFormat, "swap-format", "", "swap log format: text, binary, or none")
	f.StringVar(&opts.compression, "compression", "", "binary swap log compression: none, snappy, or lz4")
	f.StringVar(&opts.onInvalid, "on-invalid", "", "invalid reference policy: abort or skip")
	f.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	f.BoolVar(&opts.check, "check", false, "verify engine invariants after every reference")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, or error")
	cmd.MarkFlagsMutuallyExclusive("refs", "refs-file")

	return cmd
}

func loadConfig(cmd *cobra.Command, opts *runOptions) (*simulator.Config, error) {
	var (
		cfg *simulator.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = simulator.LoadConfigFromFile(opts.configPath)
	} else {
		cfg, err = simulator.LoadConfigFromEnv()
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("frames") {
		cfg.NumFrames = opts.frames
	}
	if f.Changed("pages") {
		cfg.NumPages = opts.pages
	}
	if f.Changed("swap-log") {
		cfg.SwapLogPath = opts.swapLog
	}
	if f.Changed("swap-format") {
		cfg.SwapLogFormat = opts.swapFormat
	}
	if f.Changed("compression") {
		cfg.SwapLogCompression = opts.compression
	}
	if f.Changed("on-invalid") {
		cfg.OnInvalidPage = opts.onInvalid
	}
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if opts.noColor || !isTerminal(os.Stdout) {
		cfg.ColorOutput = false
	}
	if opts.check {
		cfg.CheckInvariants = true
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	runID := xid.New()
	logger := simulator.NewLogger(cfg.LogLevel, cmd.ErrOrStderr(), runID)
	out := cmd.OutOrStdout()

	var refs []int
	switch {
	case cmd.Flags().Changed("refs"):
		refs, err = simulator.ParseReferences(opts.refs)
	case opts.refsFile != "":
		refs, err = readRefsFile(opts.refsFile)
	default:
		session, err := simulator.ReadSession(os.Stdin, out, isTerminal(os.Stdin))
		if err != nil {
			return err
		}
		sim, err := simulator.New(cfg, out, simulator.WithLogger(logger), simulator.WithRunID(runID))
		if err != nil {
			return err
		}
		_, err = sim.RunSession(session)
		return err
	}
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no page references given")
	}

	sim, err := simulator.New(cfg, out, simulator.WithLogger(logger), simulator.WithRunID(runID))
	if err != nil {
		return err
	}
	_, err = sim.Run(refs)
	return err
}

func readRefsFile(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open references file: %w", err)
	}
	defer file.Close()

	refs, err := simulator.ReadReferences(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return refs, nil
}
