package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dropwatch/internal/product"
)

// readItems decodes listings from path, or from stdin when path is "-". The
// input may be a single JSON array or one JSON object per line.
func readItems(path string) ([]*product.Item, error) {
	if path == "" || path == "-" {
		return decodeItems(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return decodeItems(file)
}

func decodeItems(r io.Reader) ([]*product.Item, error) {
	reader := bufio.NewReader(r)

	first, err := firstNonSpace(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read input: %w", err)
	}

	if first == '[' {
		var items []*product.Item
		if err := json.NewDecoder(reader).Decode(&items); err != nil {
			return nil, fmt.Errorf("parse item array: %w", err)
		}
		return items, nil
	}

	var items []*product.Item
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		item := &product.Item{}
		if err := json.Unmarshal([]byte(text), item); err != nil {
			return nil, fmt.Errorf("parse item on line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return items, nil
}

// firstNonSpace peeks past leading whitespace without consuming any input the
// JSON decoder will need.
func firstNonSpace(reader *bufio.Reader) (byte, error) {
	for {
		data, err := reader.Peek(1)
		if err != nil {
			return 0, err
		}
		switch data[0] {
		case ' ', '\t', '\n', '\r':
			if _, err := reader.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return data[0], nil
		}
	}
}
