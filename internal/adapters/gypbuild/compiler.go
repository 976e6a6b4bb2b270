package gypbuild

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Compiler turns grammar C sources into a loadable shared library.
type Compiler interface {
	Name() string
	Compile(out, includeDir string, sources []string) error
}

// CCompiler shells out to a C compiler (CC, default "cc").
type CCompiler struct {
	Command string
}

// NewCCompiler returns a compiler using $CC, or cc when unset.
func NewCCompiler() *CCompiler {
	cmd := os.Getenv("CC")
	if cmd == "" {
		cmd = "cc"
	}
	return &CCompiler{Command: cmd}
}

// Name implements Compiler.
func (c *CCompiler) Name() string { return c.Command }

// Args returns the command line used to build out from sources.
func (c *CCompiler) Args(out, includeDir string, sources []string) []string {
	shared := "-shared"
	if runtime.GOOS == "darwin" {
		shared = "-dynamiclib"
	}
	args := []string{shared, "-fPIC", "-O2", "-I" + includeDir, "-o", out}
	return append(args, sources...)
}

// Compile runs the compiler. The output directory is created if needed and
// the compiler's combined output is included in any error.
func (c *CCompiler) Compile(out, includeDir string, sources []string) error {
	if _, err := exec.LookPath(c.Command); err != nil {
		return fmt.Errorf("compiler %s: %w", c.Command, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}
	cmd := exec.Command(c.Command, c.Args(out, includeDir, sources)...)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", c.Command, err, b)
	}
	return nil
}

// SourceDigest hashes the sources in order. Names are mixed in so that
// moving content between files changes the digest.
func SourceDigest(sources []string) (string, error) {
	h := sha256.New()
	for _, src := range sources {
		f, err := os.Open(src)
		if err != nil {
			return "", err
		}
		io.WriteString(h, filepath.Base(src))
		h.Write([]byte{0})
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
