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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/docanalysis/internal/logging"
	"github.com/localnerve/docanalysis/internal/testutil"
	"go.uber.org/zap"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")

	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Start a database container for local development and e2e runs, with the
environment variables from the .env file. The container stops on SIGINT or SIGTERM.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

Variables: DB_TYPE (mariadb, mysql, postgres), DB_IMAGE, DB_DATABASE,
DB_APP_USER, DB_APP_PASSWORD, DB_ROOT_PASSWORD

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	log := logging.Must("info", "console")

	if envFilename != "" {
		log.Info("Loading environment variables", zap.String("file", envFilename))
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatal("Failed to load environment variables", zap.Error(err))
		}
	} else {
		log.Info("No environment file specified, using current environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	db, err := testutil.StartDatabase(ctx, testutil.DatabaseOptions{
		Type:         os.Getenv("DB_TYPE"),
		Image:        os.Getenv("DB_IMAGE"),
		Database:     os.Getenv("DB_DATABASE"),
		User:         os.Getenv("DB_APP_USER"),
		Password:     os.Getenv("DB_APP_PASSWORD"),
		RootPassword: os.Getenv("DB_ROOT_PASSWORD"),
	}, log)
	if err != nil {
		log.Fatal("Failed to create test container", zap.Error(err))
	}

	// Settings for the server and the CLI, in .env form
	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\n", db.Config.DBType, db.Config.DBHost, db.Config.DBPort)

	<-ctx.Done()
	log.Info("Received signal, terminating test container")
	db.Terminate(context.Background(), log)
}
