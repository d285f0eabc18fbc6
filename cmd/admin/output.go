package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"astro-admin-go/internal/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// readData resolves a --data value: inline JSON, @path for a file or "-"
// for stdin.
func readData(raw string, stdin io.Reader) (json.RawMessage, error) {
	var data []byte
	switch {
	case raw == "":
		return nil, errors.New("--data is required")
	case raw == "-":
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = body
	case strings.HasPrefix(raw, "@"):
		body, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return nil, err
		}
		data = body
	default:
		data = []byte(raw)
	}
	if !json.Valid(data) {
		return nil, errors.New("--data is not valid JSON")
	}
	return json.RawMessage(data), nil
}

// describe replaces err with the message a user should see, keeping
// per-field validation detail.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return fmt.Errorf("invalid input: %s", verrs.Error())
	}
	return errors.New(services.Message(err))
}
