// cmd/harvest/main.go
package main

import (
	"github.com/docdex/harvest/internal/cli"
)

func main() {
	// Interrupt handling lives in the run command: SIGINT cancels the crawl
	// context so the loop stops between entities and output is flushed,
	// instead of killing the process mid-write.
	cli.Execute()
}
