package cli

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go-simpler.org/env"
)

type config struct {
	Pretty        bool   `env:"SWANJSON_PRETTY" default:"false" usage:"pretty print output"`
	TypeTag       string `env:"SWANJSON_TYPE_TAG" usage:"key under which struct type names are written"`
	NonPublic     bool   `env:"SWANJSON_NON_PUBLIC" default:"false" usage:"include unexported struct fields"`
	NatsURL       string `env:"SWANJSON_NATS_URL" default:"nats://127.0.0.1:4222" usage:"NATS server URL"`
	NkeySeed      string `env:"SWANJSON_NATS_NKEY_SEED" usage:"nkey user seed used to authenticate with NATS"`
	SubjectPrefix string `env:"SWANJSON_SUBJECT_PREFIX" default:"swanjson" usage:"first token of every NATS subject"`
	Compress      bool   `env:"SWANJSON_COMPRESS" default:"false" usage:"zstd compress documents sent over NATS"`
}

func loadConfig() (*config, error) {
	c := &config{}
	if err := env.Load(c, &env.Options{SliceSep: ","}); err != nil {
		return nil, errors.Wrap(err, "loading environment")
	}
	return c, nil
}

func printUsage(w io.Writer) {
	env.Usage(&config{}, w, nil)
}

func withConfig(ctx context.Context, c *config) context.Context {
	return context.WithValue(ctx, configKey, c)
}

func configFromContext(ctx context.Context) *config {
	if c, ok := ctx.Value(configKey).(*config); ok {
		return c
	}
	return &config{}
}
