package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/credentials"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshuapare/prefetchkit/internal/source"
	"github.com/joshuapare/prefetchkit/pkg/prefetch"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configFile string
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var rootCmd = &cobra.Command{
	Use:   "pfctl",
	Short: "Inspect Windows Prefetch files",
	Long: `pfctl parses Windows Prefetch (.pf) files, both the uncompressed SCCA
records written by Windows XP through 8.1 and the compressed MAM containers
written by Windows 10 and later. Inputs can be local paths, gzip or zstd
compressed copies, or s3://bucket/key objects.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initConfig() },
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	flags.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	flags.StringVar(&configFile, "config", "", "Config file (default ./pfctl.yaml or $HOME/.pfctl/pfctl.yaml)")
	flags.Bool("strict", false, "Fail on size inconsistencies instead of warning")
	flags.Int("cache-capacity", 0, "Decompressed blocks kept in memory (0 = default)")
	flags.Int("block-size", 0, "Decompression block size in bytes (0 = default)")
	flags.String("s3-region", "", "AWS region for s3:// inputs")
	flags.String("s3-endpoint", "", "S3 endpoint override for S3-compatible stores")
	flags.Bool("s3-path-style", false, "Use path-style S3 addressing")

	for _, name := range []string{"strict", "cache-capacity", "block-size"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	_ = viper.BindPFlag("s3.region", flags.Lookup("s3-region"))
	_ = viper.BindPFlag("s3.endpoint", flags.Lookup("s3-endpoint"))
	_ = viper.BindPFlag("s3.path_style", flags.Lookup("s3-path-style"))
}

// initConfig loads pfctl.yaml and PFCTL_* environment variables. A missing
// config file is not an error.
func initConfig() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("pfctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.pfctl")
	}
	viper.SetEnvPrefix("PFCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger returns the logger handed to the parser. Warnings go to stderr
// unless --quiet; --verbose adds debug records.
func newLogger() *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openOptions() prefetch.OpenOptions {
	return prefetch.OpenOptions{
		Strict:        viper.GetBool("strict"),
		CacheCapacity: viper.GetInt("cache-capacity"),
		BlockSize:     viper.GetInt("block-size"),
		Logger:        newLogger(),
	}
}

// openInput opens a local path or an s3:// object.
func openInput(ctx context.Context, input string, opts prefetch.OpenOptions) (prefetch.Reader, error) {
	if !strings.HasPrefix(input, "s3://") {
		return prefetch.Open(input, opts)
	}
	bucket, key, err := source.ParseS3URI(input)
	if err != nil {
		return nil, err
	}
	client, err := source.NewS3Client(ctx, s3Config())
	if err != nil {
		return nil, err
	}
	return prefetch.OpenS3(ctx, client, bucket, key, opts)
}

func s3Config() source.S3Config {
	cfg := source.S3Config{
		Region:       viper.GetString("s3.region"),
		Endpoint:     viper.GetString("s3.endpoint"),
		UsePathStyle: viper.GetBool("s3.path_style"),
	}
	id, secret := viper.GetString("s3.access_key_id"), viper.GetString("s3.secret_access_key")
	if id != "" && secret != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(id, secret, viper.GetString("s3.session_token"))
	}
	return cfg
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
