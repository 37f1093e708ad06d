package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	// Color functions - fatih/color disables itself when output is not a TTY
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSuccess prints a success message with a checkmark.
func PrintSuccess(msg string) {
	fmt.Printf("%s %s\n", successColor.Sprint("✓"), msg)
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Printf("%s %s\n", warningColor.Sprint("!"), msg)
}

// PrintError prints an error message to stderr.
func PrintError(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("✗"), msg)
}

// PrintInfo prints an informational message.
func PrintInfo(msg string) {
	fmt.Println(infoColor.Sprint(msg))
}

// PrintDim prints a de-emphasized detail line.
func PrintDim(msg string) {
	fmt.Printf("  %s\n", dimColor.Sprint(msg))
}

// outputJSON marshals v to indented JSON on stdout.
func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
