// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command rocketchat-zulip converts a mongodump of a Rocket.Chat database
// into a Zulip data import directory, ready for
// `manage.py import <output>` on a Zulip server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rocketchat-zulip",
	Short: "Convert a Rocket.Chat export into a Zulip import bundle",
	Long: `rocketchat-zulip reads the users, rocketchat_room and rocketchat_message
collections of a Rocket.Chat mongodump and writes a Zulip data import
directory.

Examples:
  rocketchat-zulip convert ./dump/rocketchat --output ./converted
  rocketchat-zulip convert ./dump/rocketchat --output ./converted --tarball
  rocketchat-zulip example-config > config.yaml`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Tag, Commit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newConvertCmd(), newExampleConfigCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
