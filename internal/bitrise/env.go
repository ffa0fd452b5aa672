// Package bitrise exports CLI results to a Bitrise CI build: environment
// variables for later steps and artifacts in the deploy directory.
package bitrise

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	EnvDeployDir   = "BITRISE_DEPLOY_DIR"
	EnvBuildNumber = "BITRISE_BUILD_NUMBER"
)

// IsBitriseEnvironment returns true if running inside a Bitrise CI build.
func IsBitriseEnvironment() bool {
	return os.Getenv(EnvBuildNumber) != "" || os.Getenv(EnvDeployDir) != ""
}

// Overridden in tests.
var (
	lookPath   = exec.LookPath
	runCommand = func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	}
)

// ExportEnvVar exports an environment variable with envman so that
// downstream steps can read it. It reports false without error when envman
// is not on PATH.
func ExportEnvVar(key, value string) (bool, error) {
	envman, err := lookPath("envman")
	if err != nil {
		return false, nil
	}

	if err := runCommand(envman, "add", "--key", key, "--value", value); err != nil {
		return false, fmt.Errorf("envman export %s: %w", key, err)
	}
	return true, nil
}

// WriteArtifact writes data to name in the deploy directory and returns the
// full path. The file is replaced atomically so a concurrent upload step
// never sees a partial artifact.
func WriteArtifact(name string, data []byte) (string, error) {
	deployDir := os.Getenv(EnvDeployDir)
	if deployDir == "" {
		return "", fmt.Errorf("%s is not set", EnvDeployDir)
	}

	if err := os.MkdirAll(deployDir, 0o755); err != nil {
		return "", fmt.Errorf("creating deploy directory: %w", err)
	}

	tmp, err := os.CreateTemp(deployDir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("creating temporary artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing artifact %s: %w", name, err)
	}

	dest := filepath.Join(deployDir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("moving artifact %s into place: %w", name, err)
	}
	return dest, nil
}
