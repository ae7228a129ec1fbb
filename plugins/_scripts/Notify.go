package main

import (
	"fmt"
	"os"
	"time"
)

// Execute prints a timestamped notice to stderr
func Execute(params string) error {
	if params == "" {
		return fmt.Errorf("notify: empty message")
	}
	fmt.Fprintf(os.Stderr, "[%s] notice: %s\n", time.Now().Format(time.RFC3339), params)
	return nil
}
