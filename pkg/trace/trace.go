// Package trace reads and writes photodiode capture files.
//
// A capture file holds one sample per line as "time<TAB>voltage", time in
// milliseconds and voltage in volts. Reading stops at the first blank line.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itohio/ppmscope/pkg/sample"
	"go.uber.org/zap"
)

// Trace is a named capture.
type Trace struct {
	Name    string
	Samples []sample.Sample
}

// Load reads a capture file. The file is closed before Load returns.
func Load(path string, opts ...Option) ([]sample.Sample, error) {
	o := newOptions(opts...)

	f, err := os.Open(path)
	if err != nil {
		return nil, newReadError(path, err)
	}
	defer f.Close()

	samples, err := Read(f)
	if err != nil {
		return nil, newReadError(path, err)
	}

	o.logger.Debug("loaded trace", zap.String("path", path), zap.Int("samples", len(samples)))
	return samples, nil
}

// LoadSpec loads a capture described by a "name=path" or bare "path" spec.
func LoadSpec(spec string, opts ...Option) (Trace, error) {
	name, path := ParseSpec(spec)
	samples, err := Load(path, opts...)
	if err != nil {
		return Trace{}, err
	}
	return Trace{Name: name, Samples: samples}, nil
}

// ParseSpec splits "name=path". A spec naming an existing file is taken as a
// bare path even when it contains '='. Without a name, NameOf(path) is used.
func ParseSpec(spec string) (name, path string) {
	if info, err := os.Stat(spec); err == nil && !info.IsDir() {
		return NameOf(spec), spec
	}
	if n, p, ok := strings.Cut(spec, "="); ok && n != "" && p != "" {
		return n, p
	}
	return NameOf(spec), spec
}

// NameOf returns the base name of path minus its extension.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Read parses samples from r. Any malformed line fails the whole read.
func Read(r io.Reader) ([]sample.Sample, error) {
	var samples []sample.Sample

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		s, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// parseLine parses "time<TAB>voltage".
func parseLine(line string) (sample.Sample, error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 2 {
		return sample.Sample{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(parts))
	}

	t, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return sample.Sample{}, fmt.Errorf("invalid time: %w", err)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return sample.Sample{}, fmt.Errorf("invalid voltage: %w", err)
	}

	return sample.Sample{Time: t, Voltage: v}, nil
}

// Write writes samples in the capture format.
func Write(w io.Writer, samples []sample.Sample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		if _, err := fmt.Fprintf(bw, "%f\t%f\n", s.Time, s.Voltage); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	return nil
}
