// Command stockbot is a chat assistant for stock price questions.
package main

import (
	"os"

	"stock-assistant/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
