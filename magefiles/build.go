// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "todos"
	binaryDir  = "bin"
	cmdDir     = "./cmd/todos"
	versionVar = "github.com/mesh-intelligence/todos/internal/cli.Version"
)

// ldflags stamps the version from $TODOS_VERSION when it is set.
func ldflags() string {
	if v := os.Getenv("TODOS_VERSION"); v != "" {
		return "-X " + versionVar + "=" + v
	}
	return ""
}

// Build compiles the todos binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Run builds and starts the server with the default configuration.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
