package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile writes content to path, creating parent directories
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCSV writes one line per argument to dir/name and returns the path
func WriteCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	CreateTestFile(t, path, []byte(strings.Join(lines, "\n")+"\n"))
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("%s: want file, stat failed: %v", path, err)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("%s: want no file, but it exists", path)
	}
}

// readFile fails the test when path cannot be read
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// AssertFileContent compares the whole file with want
func AssertFileContent(t *testing.T, path string, want []byte) {
	t.Helper()

	if got := readFile(t, path); got != string(want) {
		t.Errorf("%s:\nwant %q\ngot  %q", path, want, got)
	}
}

// AssertFileContains checks that want occurs somewhere in the file
func AssertFileContains(t *testing.T, path string, want string) {
	t.Helper()

	if got := readFile(t, path); !strings.Contains(got, want) {
		t.Errorf("%s: %q not found in\n%s", path, want, got)
	}
}

// CaptureOutput runs f with stdout and stderr redirected and returns what
// it printed
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	read := func(r *os.File) <-chan string {
		ch := make(chan string, 1)
		go func() {
			data, _ := io.ReadAll(r)
			r.Close()
			ch <- string(data)
		}()
		return ch
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	outCh, errCh := read(outR), read(errR)

	savedOut, savedErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW
	defer func() {
		os.Stdout, os.Stderr = savedOut, savedErr
	}()

	f()

	outW.Close()
	errW.Close()
	return <-outCh, <-errCh
}
