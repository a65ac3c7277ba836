package sink

import (
	"bytes"
	"context"
)

// Sink stores the text record for a list name. Every write fully
// replaces the previous record for that name.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// NormalizeLineEndings removes every carriage return.
func NormalizeLineEndings(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\r"), nil)
}

// Multi writes to each sink in order and stops at the first error.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Write(ctx context.Context, name string, data []byte) error {
	for _, s := range m {
		if err := s.Write(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}
