// Package backup provides the runners that move backup payloads between the
// store and a file, stdin/stdout or the system clipboard.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/printers"
)

// Clipboard is the text clipboard used by the runners. Tests swap it out.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("clipboard is not supported on this system")
	}
	return clipboard.ReadAll()
}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// SystemClipboard is backed by github.com/atotto/clipboard.
var SystemClipboard Clipboard = systemClipboard{}

// Export writes a backup of everything in the store.
type Export struct {
	Service *app.Service
	// Path is the destination file. Empty or "-" writes to Out.
	Path string
	// Clipboard, when set, receives the payload instead of Path/Out.
	Clipboard Clipboard
	Out       io.Writer
}

func (n *Export) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not export, no service")
	}
	data, err := n.Service.Export(ctx)
	if err != nil {
		return err
	}

	switch {
	case n.Clipboard != nil:
		if err := n.Clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("copy backup to clipboard: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "backup copied to clipboard (%d bytes)\n", len(data))
	case n.Path == "" || n.Path == "-":
		out := n.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(n.Path, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "backup written to %s\n", n.Path)
	}
	return nil
}

// Import replaces everything in the store with a backup.
type Import struct {
	Service *app.Service
	// Path is the source file. Empty or "-" reads In.
	Path string
	// Clipboard, when set, is read instead of Path/In.
	Clipboard Clipboard
	In        io.Reader
}

func (n *Import) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not import, no service")
	}
	data, err := n.read()
	if err != nil {
		return err
	}
	res, err := n.Service.Import(ctx, data)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{}
	pp.ImportResult(res)
	return nil
}

func (n *Import) read() ([]byte, error) {
	switch {
	case n.Clipboard != nil:
		text, err := n.Clipboard.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read backup from clipboard: %w", err)
		}
		return []byte(text), nil
	case n.Path == "" || n.Path == "-":
		in := n.In
		if in == nil {
			in = os.Stdin
		}
		return io.ReadAll(in)
	default:
		data, err := os.ReadFile(n.Path)
		if err != nil {
			return nil, fmt.Errorf("read backup: %w", err)
		}
		return data, nil
	}
}
