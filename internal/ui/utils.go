package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

var (
	out io.Writer     = os.Stdout
	in  *bufio.Reader = bufio.NewReader(os.Stdin)
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Fprintf(out, "%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Fprintf(out, "%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Fprintf(out, "\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Fprintf(out, "\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Fprintf(out, "%s%s%s", ColorBlue, message, ColorReset)
}

func printItem(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s- %s%s\n", ColorGreen, fmt.Sprintf(format, args...), ColorReset)
}

func readLine(prompt string) (string, error) {
	PrintInfo(prompt)
	input, err := in.ReadString('\n')
	input = strings.TrimSpace(input)
	if err == io.EOF && input != "" {
		err = nil
	}
	return input, err
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	input, _ := readLine(prompt)
	return input
}

// ReadInt reads an integer from stdin with validation. It returns io.EOF once
// stdin is exhausted.
func ReadInt(prompt string, min, max int) (int, error) {
	input, err := readLine(prompt)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}

	return value, nil
}
