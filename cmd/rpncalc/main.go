// Package main is the entry point for the rpncalc command.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/rpncalc/pkg/api"
	grpcapi "github.com/lemonberrylabs/rpncalc/pkg/api/grpc"
	"github.com/lemonberrylabs/rpncalc/pkg/batch"
	"github.com/lemonberrylabs/rpncalc/pkg/config"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
	"github.com/lemonberrylabs/rpncalc/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errReported marks a failure whose diagnostic has already been printed.
var errReported = errors.New("already reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rpncalc [file]",
		Short: "Convert infix expressions to RPN and evaluate them",
		Long: `rpncalc reads one infix expression per line (single-digit operands,
+ - * / %, unary minus and parentheses), prints its Reverse Polish Notation
and evaluates it. Lines that fail print "RPN: ERROR" / "Result: ERROR".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, batch.ModeInfix, config.DefaultInfixInput)
		},
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("rpncalc version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.String("format", "", "Output format: text, json or yaml (default text, env RPNCALC_FORMAT)")
	pf.Int("workers", 0, "Lines evaluated concurrently (default 1, env RPNCALC_WORKERS)")
	pf.Bool("verbose", false, "Log failed lines to stderr")
	root.Flags().String("input", "", "Input file (default input_RPN_EC.txt next to the executable, env RPNCALC_INPUT)")

	rpn := &cobra.Command{
		Use:   "rpn [file]",
		Short: "Evaluate space-separated RPN expressions, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, batch.ModeRPN, config.DefaultRPNInput)
		},
	}
	rpn.Flags().String("input", "", "Input file (default input_RPN.txt next to the executable, env RPNCALC_INPUT)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC evaluation APIs",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serve.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serve.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serve.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")

	root.AddCommand(rpn, serve)
	return root
}

// loadConfig layers flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("input") {
		cfg.Input, _ = flags.GetString("input")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("grpc-port") {
		cfg.Server.GRPCPort, _ = flags.GetInt("grpc-port")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if path != "" && cfg.Verbose {
		log.Printf("Loaded config from %s", path)
	}
	return cfg, nil
}

func runBatch(cmd *cobra.Command, args []string, mode batch.Mode, defaultInput string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := batch.ParseFormat(cfg.Format)

	input := cfg.Input
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		input = besideExecutable(defaultInput)
	}

	p := batch.NewProcessor(
		batch.WithMode(mode),
		batch.WithWorkers(cfg.Workers),
		batch.WithVerbose(cfg.Verbose),
	)
	w := batch.NewWriter(cmd.OutOrStdout(), format, mode)

	records, err := p.ProcessFile(cmd.Context(), input)
	if err != nil {
		if types.IsKind(err, types.KindInputNotFound) {
			if werr := w.WriteMissingInput(filepath.Base(input)); werr != nil {
				return werr
			}
			return errReported
		}
		return err
	}
	return w.Write(records)
}

// besideExecutable resolves name in the directory of the running binary,
// falling back to the working directory.
func besideExecutable(name string) string {
	exe, err := os.Executable()
	if err != nil {
		log.Printf("Warning: cannot locate executable, using working directory: %v", err)
		return name
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr := cfg.HTTPAddr()
	grpcAddr := cfg.GRPCAddr()

	s := store.New()
	server := api.New(s, cfg.Workers)
	web.New(s).Register(server.App())

	// Start gRPC server
	grpcServer := grpcapi.New(s)
	go func() {
		log.Printf("gRPC server listening on %s", grpcAddr)
		if err := grpcServer.Serve(grpcAddr); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Println("Shutting down rpncalc...")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("rpncalc API listening on %s (workers=%d)", addr, cfg.Workers)
	log.Printf("Web UI available at http://%s/ui", addr)
	return server.Listen(addr)
}
