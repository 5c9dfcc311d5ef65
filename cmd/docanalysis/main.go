// main.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Command docanalysis runs the analysis pipeline and inspects analysis chains from the shell.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/localnerve/docanalysis/internal/app"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/logging"
	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	envFile  string
	logLevel string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docanalysis",
		Short:         "Versioned document analyses with provenance",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&envFile, "env-file", "f", "", "path to a .env file loaded before configuration")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(migrateCmd)
	root.AddCommand(ingestCmd)
	root.AddCommand(regenerateCmd)
	root.AddCommand(chainCmd)

	return root
}

// openApp loads configuration and connects to the store. Console logs go to stderr.
func openApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return nil, err
	}
	return app.Open(cfg, log)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
