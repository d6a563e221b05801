package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quantfoundry/treeconf/pkg/config"
	jsonutil "github.com/quantfoundry/treeconf/pkg/json"
	"github.com/quantfoundry/treeconf/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var logLevel string

	root := &cobra.Command{
		Use:   "treeconf",
		Short: "treeconf - hierarchical experiment configuration tool",
		Long: `treeconf inspects, converts and compares hierarchical parameter trees.
Configs are read from wire text (.cfg/.txt), JSON or YAML files and can be
rendered, flattened, diffed and converted between formats.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{
				Level:    logLevel,
				Encoding: "console",
			})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("treeconf v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var renderEnv string
	renderCmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a config as an indented tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			switch {
			case renderEnv != "":
				cfg, err = config.FromEnvVar(renderEnv)
				if err == nil && cfg == nil {
					err = fmt.Errorf("environment variable %s is not set", renderEnv)
				}
			case len(args) == 1:
				cfg, err = loadConfig(args[0])
			default:
				err = fmt.Errorf("pass a config file or --env VAR")
			}
			if err != nil {
				return err
			}
			fmt.Println(cfg)
			return nil
		},
	}
	renderCmd.Flags().StringVar(&renderEnv, "env", "", "Read wire text from this environment variable instead of a file")
	root.AddCommand(renderCmd)

	root.AddCommand(&cobra.Command{
		Use:   "flatten <file>",
		Short: "Flatten a config to dotted parameter paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			series, err := config.ToSeries(cfg, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(series)
			return nil
		},
	})

	var diffCSV bool
	diffCmd := &cobra.Command{
		Use:   "diff <file> <file>...",
		Short: "Show per-config parameters relative to the common baseline",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, names, err := loadConfigs(args)
			if err != nil {
				return err
			}
			if err := config.ValidateConfigs(configs); err != nil {
				return err
			}
			diffs, err := config.DiffConfigs(configs)
			if err != nil {
				return err
			}
			frame, err := config.ToFrame(diffs, names)
			if err != nil {
				return err
			}
			if diffCSV {
				fmt.Print(frame.ToCSV())
				return nil
			}
			fmt.Println(frame)
			return nil
		},
	}
	diffCmd.Flags().BoolVar(&diffCSV, "csv", false, "Emit the comparison as CSV")
	root.AddCommand(diffCmd)

	root.AddCommand(&cobra.Command{
		Use:   "intersect <file> <file>...",
		Short: "Show the parameters shared by all configs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, _, err := loadConfigs(args)
			if err != nil {
				return err
			}
			shared, err := config.IntersectConfigs(configs)
			if err != nil {
				return err
			}
			fmt.Println(shared)
			return nil
		},
	})

	var convertTo string
	convertCmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a config between wire text, JSON and YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			return writeConfig(os.Stdout, cfg, convertTo)
		},
	}
	convertCmd.Flags().StringVar(&convertTo, "to", "text", "Output format (text, json, yaml)")
	root.AddCommand(convertCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads a config from a file, picking the decoder by
// extension: .json and .yaml/.yml decode through the ordered Dict
// mirror, anything else is treated as wire text.
func loadConfig(filename string) (*config.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		d := config.NewDict()
		if err := jsonutil.Unmarshal(data, d); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config %s: %w", filename, err)
		}
		return config.FromDict(d)
	case ".yaml", ".yml":
		d := config.NewDict()
		if err := yaml.Unmarshal(data, d); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", filename, err)
		}
		return config.FromDict(d)
	default:
		cfg, err := config.Parse(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
		}
		return cfg, nil
	}
}

func loadConfigs(filenames []string) ([]*config.Config, []string, error) {
	configs := make([]*config.Config, len(filenames))
	names := make([]string, len(filenames))
	for i, filename := range filenames {
		cfg, err := loadConfig(filename)
		if err != nil {
			return nil, nil, err
		}
		configs[i] = cfg
		names[i] = filepath.Base(filename)
	}
	return configs, names, nil
}

func writeConfig(w *os.File, cfg *config.Config, format string) error {
	switch format {
	case "text":
		text, err := cfg.Serialize(true)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, text)
		return nil
	case "json":
		data, err := jsonutil.MarshalIndent(cfg.ToDict(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(cfg.ToDict())
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}
