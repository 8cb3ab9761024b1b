package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	ColorGreen = "\033[0;32m"
	ColorRed   = "\033[0;31m"
	ColorGray  = "\033[0;90m"
	ColorCyan  = "\033[0;36m"
	ColorBold  = "\033[1m"
	ColorReset = "\033[0m"
)

type LogEntry map[string]interface{}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	var currentSuite string

	for scanner.Scan() {
		line := scanner.Text()

		jsonStart := strings.Index(line, "{")
		if jsonStart == -1 {
			fmt.Println(line)
			continue
		}
		jsonStr := line[jsonStart:]

		var entry LogEntry
		if err := json.Unmarshal([]byte(jsonStr), &entry); err != nil {
			fmt.Println(line)
			continue
		}
		processServerLogEntry(entry, &currentSuite)
	}
}

func processServerLogEntry(entry LogEntry, currentSuite *string) {
	msg, _ := entry["msg"].(string)

	switch msg {
	case "starting vault service":
		printSuiteHeader(currentSuite, "SETUP")
		details := fmt.Sprintf("variant=%v mover=%v", entry["variant"], entry["mover"])
		printStep("PASS", "Service Starting", details)

	case "http server listening":
		printSuiteHeader(currentSuite, "SETUP")
		details := fmt.Sprintf("port=%v tls=%v", entry["port"], entry["tls"])
		printStep("PASS", "Server Listening", details)

	case "http request":
		printSuiteHeader(currentSuite, "REQUESTS")
		status := intField(entry, "status")
		label := fmt.Sprintf("%v %v", entry["method"], entry["path"])
		details := fmt.Sprintf("%d %s", status, durationField(entry, "duration"))
		if status < http.StatusBadRequest {
			printStep("PASS", label, details)
		} else {
			printStep("FAIL", label, details)
		}

	case "context cancelled, shutting down server", "received signal, shutting down server":
		printSuiteHeader(currentSuite, "SHUTDOWN")
		printStep("PASS", msg, "")

	case "shutdown complete":
		printSuiteHeader(currentSuite, "SHUTDOWN")
		printStep("PASS", msg, "")
	}
}

// intField reads a numeric attribute. encoding/json decodes all numbers into
// float64.
func intField(entry LogEntry, key string) int {
	f, _ := entry[key].(float64)
	return int(f)
}

// durationField renders a slog duration attribute, which the JSON handler
// encodes as nanoseconds.
func durationField(entry LogEntry, key string) string {
	f, ok := entry[key].(float64)
	if !ok {
		return "?"
	}
	return time.Duration(int64(f)).Round(time.Millisecond).String()
}

func printSuiteHeader(currentSuite *string, newSuite string) {
	if *currentSuite != newSuite {
		separator := strings.Repeat("─", 10)
		fmt.Printf("\n%s%s %s %s%s\n", ColorGray, separator, ColorBold+newSuite, separator, ColorReset)
		*currentSuite = newSuite
	}
}

func printStep(status, message, details string) {
	var color, symbol string
	if status == "PASS" {
		color, symbol = ColorGreen, "✓"
	} else {
		color, symbol = ColorRed, "✗"
	}

	if details != "" {
		fmt.Printf("  %s%s%s %s %s(%s)%s\n", color, symbol, ColorReset, message, ColorGray, details, ColorReset)
	} else {
		fmt.Printf("  %s%s%s %s\n", color, symbol, ColorReset, message)
	}
}
