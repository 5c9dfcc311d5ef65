// containers.go
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

// Package testutil starts throwaway database containers for integration tests
// and for the standalone testcontainers command.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/docanalysis/data"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// DatabaseOptions describes the container to start
type DatabaseOptions struct {
	Type         string // mariadb, mysql or postgres
	Image        string
	Database     string
	User         string
	Password     string
	RootPassword string
}

// Database is a running database container
type Database struct {
	Container testcontainers.Container
	Config    *config.Config
}

// Terminate stops the container
func (d *Database) Terminate(ctx context.Context, log *zap.Logger) {
	if d == nil || d.Container == nil {
		return
	}
	if err := d.Container.Terminate(ctx); err != nil {
		log.Warn("Failed to terminate database container", zap.Error(err))
	}
}

// StartDatabase starts a database container and, for MariaDB and MySQL, applies the
// table DDL and the service account privileges.
func StartDatabase(ctx context.Context, opts DatabaseOptions, log *zap.Logger) (*Database, error) {
	if opts.Image == "" {
		return nil, fmt.Errorf("database image is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	dbType, portNumber := "mysql", "3306"
	env := map[string]string{
		"MYSQL_ROOT_PASSWORD": opts.RootPassword,
		"MYSQL_DATABASE":      opts.Database,
		"MYSQL_USER":          opts.User,
		"MYSQL_PASSWORD":      opts.Password,
	}
	if opts.Type == "postgres" {
		dbType, portNumber = "postgres", "5432"
		env = map[string]string{
			"POSTGRES_PASSWORD": opts.Password,
			"POSTGRES_USER":     opts.User,
			"POSTGRES_DB":       opts.Database,
		}
	}

	tcpPort, err := nat.NewPort("tcp", portNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create database port: %w", err)
	}

	var waitFor wait.Strategy = wait.ForListeningPort(tcpPort).WithStartupTimeout(90 * time.Second)
	if dbType == "postgres" {
		waitFor = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.Image,
			ExposedPorts: []string{string(tcpPort)},
			Env:          env,
			WaitingFor:   waitFor,
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", opts.Image, err)
	}
	db := &Database{Container: container}

	host, err := container.Host(ctx)
	if err != nil {
		db.Terminate(ctx, log)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		db.Terminate(ctx, log)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	db.Config = &config.Config{
		DBType:               dbType,
		DBHost:               host,
		DBPort:               mapped.Port(),
		DBAppDatabase:        opts.Database,
		DBAppUser:            opts.User,
		DBAppPassword:        opts.Password,
		DBAppConnectionLimit: 10,
		DBLogLevel:           "warn",
	}

	if dbType == "mysql" {
		if err := initMySQL(ctx, opts, host, mapped); err != nil {
			db.Terminate(ctx, log)
			return nil, err
		}
	}

	log.Info("Database container started",
		zap.String("image", opts.Image),
		zap.String("host", host),
		zap.String("port", mapped.Port()))
	return db, nil
}

// initMySQL applies the embedded DDL as root
func initMySQL(ctx context.Context, opts DatabaseOptions, host string, port nat.Port) error {
	conn, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/%s?multiStatements=false",
		opts.RootPassword, host, port.Port(), opts.Database))
	if err != nil {
		return fmt.Errorf("failed to connect to database for setup: %w", err)
	}
	defer conn.Close()

	// The port can accept connections before the server finishes its init scripts
	for i := 0; i < 30; i++ {
		if err = conn.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	privileges := strings.NewReplacer("{{database}}", opts.Database, "{{user}}", opts.User).
		Replace(data.InitdbMariaDBPrivileges)

	for _, script := range []string{data.InitdbMariaDBTables, privileges} {
		if err := ExecuteSQL(ctx, conn, script); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteSQL runs each statement of a script. Full-line "--" comments are dropped.
func ExecuteSQL(ctx context.Context, conn *sql.DB, script string) error {
	for _, stmt := range SplitStatements(script) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: when executing > %s", err, stmt)
		}
	}
	return nil
}

// SplitStatements splits a script on semicolons, ignoring full-line comments and blanks
func SplitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
