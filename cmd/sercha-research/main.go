package main

// @title           Sercha Research API
// @version         1.0
// @description     Research assistant over your own documents. Upload files or web pages, then ask questions, summarize, compare, extract facts or build timelines with cited sources.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-research/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1
// @schemes   http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	// Cancelled on SIGINT/SIGTERM so servers and workers shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
