package ux

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DiscoverRunsheetDir searches for a .runsheet directory in multiple locations
// Priority: current dir -> parent dirs -> git root -> home dir
func DiscoverRunsheetDir() (string, error) {
	// 1. Check current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	runsheetPath := filepath.Join(cwd, ".runsheet")
	if _, err := os.Stat(runsheetPath); err == nil {
		return runsheetPath, nil
	}

	// 2. Search parent directories (up to git root or filesystem root)
	dir := cwd
	for {
		runsheetPath = filepath.Join(dir, ".runsheet")
		if _, err := os.Stat(runsheetPath); err == nil {
			return runsheetPath, nil
		}

		// Check if we're at git root
		gitDir := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitDir); err == nil {
			// We're at git root but no .runsheet found yet
			// Keep searching up one more level in case it's in a parent workspace
			parent := filepath.Dir(dir)
			if parent == dir {
				// At filesystem root
				break
			}
			dir = parent
			continue
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	// 3. Try git root explicitly
	if gitRoot, err := getGitRoot(); err == nil {
		runsheetPath = filepath.Join(gitRoot, ".runsheet")
		if _, err := os.Stat(runsheetPath); err == nil {
			return runsheetPath, nil
		}
	}

	// 4. Fallback to current directory (will be created if needed)
	return filepath.Join(cwd, ".runsheet"), nil
}

// DiscoverRequestFile searches for a request file in multiple locations
func DiscoverRequestFile(filename string) (string, error) {
	// Try these locations in order:
	// 1. ./<filename>
	// 2. Parent directories up to git root
	// 3. .runsheet/<filename>
	// 4. ~/.runsheet/<filename>

	// 1. Check current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	requestPath := filepath.Join(cwd, filename)
	if _, err := os.Stat(requestPath); err == nil {
		return requestPath, nil
	}

	// 2. Search parent directories
	dir := cwd
	for {
		requestPath = filepath.Join(dir, filename)
		if _, err := os.Stat(requestPath); err == nil {
			return requestPath, nil
		}

		// Stop at git root
		gitDir := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitDir); err == nil {
			break
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	// 3. Check the .runsheet directory
	runsheetDir, err := DiscoverRunsheetDir()
	if err == nil {
		requestPath = filepath.Join(runsheetDir, filename)
		if _, err := os.Stat(requestPath); err == nil {
			return requestPath, nil
		}
	}

	// 4. Check home directory .runsheet
	if homeDir, err := os.UserHomeDir(); err == nil {
		requestPath = filepath.Join(homeDir, ".runsheet", filename)
		if _, err := os.Stat(requestPath); err == nil {
			return requestPath, nil
		}
	}

	// Not found - return expected location in current directory
	return filepath.Join(cwd, filename), nil
}

// getGitRoot returns the git repository root directory
func getGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// EnsureRunsheetDir ensures the .runsheet directory exists
func EnsureRunsheetDir() error {
	runsheetDir, err := DiscoverRunsheetDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if _, err := os.Stat(runsheetDir); os.IsNotExist(err) {
		if err := os.MkdirAll(runsheetDir, 0755); err != nil {
			return err
		}
	}

	// Create subdirectories
	subdirs := []string{"results", "logs"}
	for _, subdir := range subdirs {
		path := filepath.Join(runsheetDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return err
		}
	}

	return nil
}
