package cli

import (
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// colorMode selects when output is syntax highlighted.
type colorMode string

const (
	colorAuto   colorMode = "auto"
	colorAlways colorMode = "always"
	colorNever  colorMode = "never"
)

var _ pflag.Value = (*colorMode)(nil)

func (m *colorMode) String() string {
	return string(*m)
}

func (m *colorMode) Set(v string) error {
	switch colorMode(v) {
	case colorAuto, colorAlways, colorNever:
		*m = colorMode(v)
		return nil
	}
	return errors.Errorf("invalid color mode %q: must be auto, always or never", v)
}

func (m *colorMode) Type() string {
	return "mode"
}

// enabled reports whether w should receive highlighted output.
func (m colorMode) enabled(w io.Writer) bool {
	switch m {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type output struct {
	color    colorMode
	compress bool
}

func (o *output) register(flags *pflag.FlagSet) {
	o.color = colorAuto
	flags.Var(&o.color, "color", "highlight output: auto, always or never")
	flags.BoolVar(&o.compress, "zstd", false, "zstd compress the output")
}

// write sends text to w, compressed or highlighted as configured.
func (o *output) write(w io.Writer, text string) error {
	if o.compress {
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return errors.Wrap(err, "creating zstd writer")
		}
		if _, err := io.WriteString(enc, text); err != nil {
			enc.Close()
			return errors.Wrap(err, "writing compressed output")
		}
		return errors.Wrap(enc.Close(), "finishing compressed output")
	}

	if o.color.enabled(w) {
		if err := quick.Highlight(w, text, "json", "terminal256", "monokai"); err != nil {
			return errors.Wrap(err, "highlighting output")
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	_, err := io.WriteString(w, text+"\n")
	return err
}
