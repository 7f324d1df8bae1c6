// Package test provides shared helpers for tests that exercise the
// generator against the fixture application in testdata.
package test

import (
	"path/filepath"
	"runtime"
	"testing"
)

// FixtureDir returns the testdata directory at the repository root.
func FixtureDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata")
}

// FixtureApp returns the root of the fixture application package tree.
func FixtureApp(t *testing.T) string {
	t.Helper()
	return filepath.Join(FixtureDir(t), "fixtureapp")
}
