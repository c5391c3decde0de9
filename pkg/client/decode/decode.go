// Package decode unwraps a compressed HTTP body according to the Content-Encoding header.
package decode

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// AcceptEncoding lists the encodings supported by Decode, for the Accept-Encoding request header.
const AcceptEncoding = "gzip, deflate, br"

// Decode wraps the body by a decompressing reader.
// An unknown or empty encoding returns the body as is.
func Decode(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		v, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("cannot decode gzip: %w", err)
		}
		return readCloser{Reader: v, closers: []io.Closer{v, body}}, nil
	case "deflate":
		v := flate.NewReader(body)
		return readCloser{Reader: v, closers: []io.Closer{v, body}}, nil
	case "br":
		return readCloser{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	default:
		return body, nil
	}
}

// readCloser closes the decoder and the underlying body.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (v readCloser) Close() error {
	var firstErr error
	for _, c := range v.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
