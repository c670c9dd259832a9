package proxypool

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadEndpointsFile reads a newline-delimited proxy list from path.
// Blank lines and lines starting with '#' are ignored.
func LoadEndpointsFile(path string) ([]Endpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open proxy list: %w", err)
	}
	defer f.Close()

	endpoints, err := ReadEndpoints(f)
	if err != nil {
		return nil, fmt.Errorf("proxy list %s: %w", path, err)
	}
	return endpoints, nil
}

// ReadEndpoints parses a newline-delimited proxy list from r.
// Blank lines and lines starting with '#' are ignored. Parsing stops at
// the first invalid entry, reported with its line number.
func ReadEndpoints(r io.Reader) ([]Endpoint, error) {
	var endpoints []Endpoint

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ep, err := ParseEndpoint(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		endpoints = append(endpoints, ep)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proxy list: %w", err)
	}

	return endpoints, nil
}
