package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/vitalz"
)

// writer prints values in the configured output format.
type writer struct {
	out    io.Writer
	format string
}

func newWriter(out io.Writer, format string) *writer {
	if format != vitalz.OutputYAML {
		format = vitalz.OutputJSON
	}
	return &writer{out: out, format: format}
}

func (w *writer) Print(data interface{}) error {
	if w.format == vitalz.OutputYAML {
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
