// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package main is the entry point for the vernuntii command.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vernuntii/vernuntii/internal/app"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Run(ctx, os.Args[1:], app.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}, app.Deps{Registerer: prometheus.DefaultRegisterer})
	stop()
	os.Exit(code)
}
