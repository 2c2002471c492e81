package decode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	yaml "gopkg.in/yaml.v2"

	"github.com/vinquery/nhtsavin/pkg/shared/config"
	"github.com/vinquery/nhtsavin/pkg/shared/errors"
	"github.com/vinquery/nhtsavin/pkg/vin"
)

// RunOptionsDecode holds the arguments of the decode command.
type RunOptionsDecode struct {
	OutputFormat string
	Raw          bool
}

// Result is what the decode command prints.
type Result struct {
	VIN       string       `json:"vin" yaml:"vin"`
	Valid     bool         `json:"valid" yaml:"valid"`
	ErrorCode *int         `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Error     string       `json:"error,omitempty" yaml:"error,omitempty"`
	Vehicle   *vin.Vehicle `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
}

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// Exit codes of the decode command.
const (
	ExitUsage      = 1
	ExitNotDecoded = 2
	ExitFault      = 3
)

var (
	AppConfig     *config.Config
	decodeOptions RunOptionsDecode

	exampleDecodeUsage = `  # Decode a VIN and print the vehicle as YAML
  nhtsavin decode 1HGCM82633A123456

  # Print the result as JSON
  nhtsavin decode -o json 1hgcm82633a123456

  # Print the raw API response
  nhtsavin decode --raw 1HGCM82633A123456`
)

var logger = hclog.NewNullLogger()

// DecodeCmd represents the decode command.
var DecodeCmd = &cobra.Command{
	Use:                   "decode [--output/-o yaml|json] [--raw] VIN",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleDecodeUsage,
	Short:                 "Decode a VIN with the NHTSA vPIC API",
	RunE:                  runDecodeCommand,
}

// Init initializes the global configuration and logger of the command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runDecodeCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !hasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateDecodeArgs(&decodeOptions, args); err != nil {
		logger.Error("invalid decode arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid decode arguments: %w", err), ExitUsage)
	}

	return runDecode(cmd.Context(), cmd.OutOrStdout(), decodeOptions, args[0])
}

// hasFlags reports whether any flag was set on the command line.
func hasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) { changed = true })
	return changed
}

// validateDecodeArgs checks the positional VIN and normalizes the output format.
func validateDecodeArgs(options *RunOptionsDecode, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one VIN is expected, got %d arguments", len(args))
	}
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("VIN is empty")
	}

	options.OutputFormat = strings.ToLower(strings.TrimSpace(options.OutputFormat))
	if options.OutputFormat == "" {
		options.OutputFormat = formatYAML
	}
	if options.OutputFormat != formatYAML && options.OutputFormat != formatJSON {
		return fmt.Errorf("unsupported output format %q", options.OutputFormat)
	}
	return nil
}

func runDecode(ctx context.Context, out io.Writer, options RunOptionsDecode, vinArg string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	q := vin.NewQuery(vinArg, vin.WithConfig(AppConfig), vin.WithLogger(logger))
	logger.Debug("decode command started", "vin", q.VIN(), "url", q.URL())

	if err := q.Decode(ctx); err != nil {
		logger.Error("decode failed", "vin", q.VIN(), "error", err)
		return errors.NewCommandError(fmt.Errorf("decode failed: %w", err), ExitFault)
	}

	if options.Raw {
		if _, err := io.WriteString(out, q.RawResponse()); err != nil {
			return err
		}
	} else if err := printResult(out, options.OutputFormat, newResult(q)); err != nil {
		return fmt.Errorf("error serializing the result: %w", err)
	}

	if !q.Valid() {
		return errors.NewCommandError(fmt.Errorf("VIN %s was not decoded: %s", q.VIN(), q.ErrorMessage()), ExitNotDecoded)
	}

	logger.Info("decode command completed successfully", "vin", q.VIN())
	return nil
}

func newResult(q *vin.Query) Result {
	result := Result{
		VIN:     q.VIN(),
		Valid:   q.Valid(),
		Error:   q.ErrorMessage(),
		Vehicle: q.Response(),
	}
	if code, ok := q.ErrorCode(); ok {
		result.ErrorCode = &code
	}
	return result
}

func printResult(out io.Writer, format string, result Result) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatJSON:
		data, err = json.MarshalIndent(result, "", "    ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(result)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func init() {
	DecodeCmd.Flags().StringVarP(&decodeOptions.OutputFormat, "output", "o", formatYAML, "Output format: yaml or json.")
	DecodeCmd.Flags().BoolVar(&decodeOptions.Raw, "raw", false, "Print the raw API response instead of the decoded record.")
	DecodeCmd.Flags().BoolP("help", "h", false, "Show help for the decode command.")
}
