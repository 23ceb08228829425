package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/RobertWHurst/swanjson"
	"github.com/RobertWHurst/swanjson/formats/jsonc"
)

func newTailCmd() *cobra.Command {
	var (
		flags serializeFlags
		out   output
	)

	cmd := &cobra.Command{
		Use:   "tail <subject>",
		Short: "Print documents published on a subject until interrupted",
		Long: `Tail subscribes to a subject and prints every document it receives. The
subject may use NATS wildcards. Documents are re-rendered with the
serialization flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			opts := flags.options(cmd)

			transport, err := connect(configFromContext(ctx))
			if err != nil {
				return err
			}
			client := swanjson.NewClient(transport, nil)
			defer client.Close()

			binding := client.Bind(args[0])
			defer binding.Unbind()

			decoder := jsonc.New()
			docs := make(chan *swanjson.Document)
			binding.To(func(doc *swanjson.Document) {
				select {
				case docs <- doc:
				case <-ctx.Done():
				}
			})
			logger.Info("waiting for documents", "subject", args[0])

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case doc := <-docs:
					data, err := doc.Bytes()
					if err != nil {
						logger.Error("receiving document", "subject", doc.Subject(), "id", doc.ID(), "err", err)
						continue
					}
					value, err := decoder.Decode(data)
					if err != nil {
						logger.Error("decoding document", "subject", doc.Subject(), "id", doc.ID(), "err", err)
						continue
					}
					text, err := swanjson.Serialize(value, opts)
					if err != nil {
						return errors.Wrap(err, "rendering document")
					}
					logger.Debug("document received", "subject", doc.Subject(), "id", doc.ID())
					if err := out.write(cmd.OutOrStdout(), text); err != nil {
						return err
					}
				}
			}
		},
	}

	flags.register(cmd)
	out.register(cmd.Flags())
	return cmd
}
