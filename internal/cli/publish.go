package cli

import (
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/RobertWHurst/swanjson"
	natstransport "github.com/RobertWHurst/swanjson/transports/nats"
)

// connect opens the transport the publish and tail commands use.
var connect = func(cfg *config) (swanjson.Transport, error) {
	options := []nats.Option{nats.Name("swanjson")}
	if cfg.NkeySeed != "" {
		option, err := natstransport.NkeyOption([]byte(cfg.NkeySeed))
		if err != nil {
			return nil, errors.Wrap(err, "loading nkey seed")
		}
		options = append(options, option)
	}

	transport, err := natstransport.Connect(cfg.NatsURL, options...)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", cfg.NatsURL)
	}
	transport.Prefix = cfg.SubjectPrefix
	transport.Compress = cfg.Compress
	return transport, nil
}

func newPublishCmd() *cobra.Command {
	var (
		format string
		flags  serializeFlags
	)

	cmd := &cobra.Command{
		Use:   "publish <subject> [file|-]",
		Short: "Serialize a document and publish it over NATS",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			subject := args[0]

			value, name, err := readDocument(cmd, args[1:], format)
			if err != nil {
				return err
			}

			transport, err := connect(configFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			client := swanjson.NewClient(transport, swanjson.NewSerializer(flags.options(cmd)))
			defer client.Close()

			id, err := client.Publish(subject, value)
			if err != nil {
				return errors.Wrapf(err, "publishing to %s", subject)
			}
			logger.Info("document published", "subject", subject, "id", id, "format", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, jsonc, yaml, toml, cbor or msgpack")
	flags.register(cmd)
	return cmd
}
