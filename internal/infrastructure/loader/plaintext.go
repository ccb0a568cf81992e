package loader

import (
	"fmt"
	"os"
	"unicode/utf8"
)

func extractPlaintext(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary format: %s", path)
	}
	return string(raw), nil
}
