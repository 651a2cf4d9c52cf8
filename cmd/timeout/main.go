// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The timeout command runs another program under a deadline, the way the
// coreutils timeout(1) does it: the child gets the time provided by the --after
// flag, and if it does not exit in time, it is terminated and the command exits
// with the code 124.
package main

import (
	ctxt "context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/acquirecloud/timeout"
	context2 "github.com/acquirecloud/timeout/context"
	"github.com/acquirecloud/timeout/errors"
	"github.com/acquirecloud/timeout/logging"
	"github.com/acquirecloud/timeout/ulidutils"
)

// the exit codes follow the coreutils timeout(1) convention
const (
	exitExpired     = 124
	exitToolFailure = 125
	exitCannotRun   = 126
	exitNotFound    = 127
	exitSignaled    = 130
)

var version = "dev"

func main() {
	var (
		after   time.Duration
		cfgFile string
	)

	cmd := &cobra.Command{
		Use:           "timeout --after DURATION -- COMMAND [ARG]...",
		Short:         "run a command under a deadline",
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cfgFile)
			if err != nil {
				return err
			}
			logging.SetLevel(cfg.logLevel())
			d := after
			if !cmd.Flags().Changed("after") {
				if d, err = cfg.after(); err != nil {
					return fmt.Errorf("invalid after value in the config: %w", err)
				}
			}
			os.Exit(runCommand(cfg, d, args))
			return nil
		},
	}
	cmd.Flags().DurationVarP(&after, "after", "t", 0, "the deadline for the command (0 disables the guard)")
	cmd.Flags().StringVar(&cfgFile, "config", "", "the configuration file name (.yaml or .json)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "timeout:", err)
		os.Exit(exitToolFailure)
	}
}

// runCommand executes the child under the deadline d and returns the exit code
// for the whole process
func runCommand(cfg *Config, d time.Duration, args []string) int {
	log := logging.NewLogger("timeout.main")
	log.Debugf("starting run %s, config: %s", ulidutils.NewUUID(), spew.Sprint(cfg))

	// Ctrl-C and SIGTERM cancel the child, the case is reported as the signal
	// termination, never as the deadline expiry
	ctx := context2.NewSignalsContext(syscall.SIGINT, syscall.SIGTERM)

	err := timeout.Run(ctx, d, func(ctx ctxt.Context, d time.Duration) error {
		c := exec.CommandContext(ctx, args[0], args[1:]...)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	})
	return exitCode(log, err)
}

// exitCode maps the run outcome to the process exit code
func exitCode(log logging.Logger, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, timeout.ErrTimeout) {
		log.Warnf("the command did not complete in time: %v", err)
		return exitExpired
	}
	var xerr *exec.ExitError
	if errors.As(err, &xerr) {
		return xerr.ExitCode()
	}
	if errors.Is(err, ctxt.Canceled) {
		log.Warnf("the run is interrupted by a signal")
		return exitSignaled
	}
	if errors.Is(err, exec.ErrNotFound) {
		log.Errorf("the command is not found: %v", err)
		return exitNotFound
	}
	if errors.Is(err, os.ErrPermission) {
		log.Errorf("the command cannot be run: %v", err)
		return exitCannotRun
	}
	log.Errorf("the run has failed: %v", err)
	return exitToolFailure
}
