package utils

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var ErrSourceUnavailable = errors.New("source unavailable")

// SourceUnavailableError is returned when an input document cannot be read
// or is not well-formed JSON.
type SourceUnavailableError struct {
	Path string
	Op   string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrSourceUnavailable, e.Op, e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

var gzipMagic = []byte{0x1f, 0x8b}

// ReadDocument reads a JSON document from path, transparently gunzipping it
// when the file starts with the gzip magic bytes.
func ReadDocument(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	data, err := readMaybeGzip(f)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Op: "read", Err: err}
	}

	if !json.Valid(data) {
		return nil, &SourceUnavailableError{Path: path, Op: "decode", Err: errors.New("not well-formed JSON")}
	}

	return data, nil
}

func readMaybeGzip(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if !bytes.Equal(head, gzipMagic) {
		return io.ReadAll(br)
	}

	gzReader, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	defer gzReader.Close()

	return io.ReadAll(gzReader)
}
