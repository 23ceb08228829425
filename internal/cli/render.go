package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/RobertWHurst/swanjson"
	"github.com/RobertWHurst/swanjson/formats"
)

type serializeFlags struct {
	pretty    bool
	typeTag   string
	nonPublic bool
}

func (f *serializeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.pretty, "pretty", "p", false, "pretty print output")
	cmd.Flags().StringVar(&f.typeTag, "type-tag", "", "key under which struct type names are written")
	cmd.Flags().BoolVar(&f.nonPublic, "non-public", false, "include unexported struct fields")
}

// options merges the flags over the environment configuration.
func (f *serializeFlags) options(cmd *cobra.Command) swanjson.Options {
	cfg := configFromContext(cmd.Context())
	opts := swanjson.Options{
		Pretty:           cfg.Pretty,
		TypeTag:          cfg.TypeTag,
		IncludeNonPublic: cfg.NonPublic,
		Observer:         LogObserver(loggerFromContext(cmd.Context())),
	}
	if cmd.Flags().Changed("pretty") {
		opts.Pretty = f.pretty
	}
	if cmd.Flags().Changed("type-tag") {
		opts.TypeTag = f.typeTag
	}
	if cmd.Flags().Changed("non-public") {
		opts.IncludeNonPublic = f.nonPublic
	}
	return opts
}

func newRenderCmd() *cobra.Command {
	var (
		format string
		flags  serializeFlags
		out    output
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a document as JSON",
		Long: `Render decodes a JSON, JSONC, YAML, TOML, CBOR or MessagePack document and
serializes it as JSON. The format is taken from --format or the file extension;
standard input defaults to JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			value, name, err := readDocument(cmd, args, format)
			if err != nil {
				return err
			}
			logger.Debug("document decoded", "format", name)

			text, err := swanjson.Serialize(value, flags.options(cmd))
			if err != nil {
				return errors.Wrap(err, "rendering document")
			}
			return out.write(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, jsonc, yaml, toml, cbor or msgpack")
	flags.register(cmd)
	out.register(cmd.Flags())
	return cmd
}

// readDocument reads the file named by args, or standard input, and decodes
// it. It returns the value and the name of the format used.
func readDocument(cmd *cobra.Command, args []string, format string) (any, string, error) {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "reading %s", path)
	}

	var decoder swanjson.Decoder
	switch {
	case format != "":
		decoder, err = formats.Lookup(format)
	case path == "-":
		format = "json"
		decoder, err = formats.Lookup(format)
	default:
		decoder, format, err = formats.ForPath(path)
	}
	if err != nil {
		return nil, "", err
	}

	value, err := decoder.Decode(data)
	if err != nil {
		return nil, "", errors.Wrapf(err, "decoding %s", path)
	}
	return value, format, nil
}
