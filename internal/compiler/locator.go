package compiler

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrNotFound is returned by a Locator that has no executable to offer.
var ErrNotFound = errors.New("compiler not found")

// Locator resolves the compiler executable.
type Locator interface {
	Locate() (string, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func() (string, error)

// Locate calls f.
func (f LocatorFunc) Locate() (string, error) {
	return f()
}

// Explicit is a configured executable path. An empty path never resolves.
type Explicit string

// Locate implements Locator.
func (e Explicit) Locate() (string, error) {
	if e == "" {
		return "", ErrNotFound
	}
	if err := executable(string(e)); err != nil {
		return "", err
	}
	return string(e), nil
}

// KnownPaths probes install locations in order.
type KnownPaths []string

// DefaultKnownPaths are common TeX Live and MacTeX install locations.
var DefaultKnownPaths = KnownPaths{
	"/usr/local/texlive/2025basic/bin/universal-darwin/pdflatex",
	"/usr/local/texlive/2024basic/bin/universal-darwin/pdflatex",
	"/usr/local/texlive/2023basic/bin/universal-darwin/pdflatex",
	"/Library/TeX/texbin/pdflatex",
	"/usr/local/texlive/bin/x86_64-linux/pdflatex",
	"/usr/bin/pdflatex",
	"/usr/local/bin/pdflatex",
}

// Locate implements Locator.
func (k KnownPaths) Locate() (string, error) {
	for _, p := range k {
		if executable(p) == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}

// SearchPath looks the named executable up in PATH.
type SearchPath string

// Locate implements Locator.
func (s SearchPath) Locate() (string, error) {
	p, err := exec.LookPath(string(s))
	if err != nil {
		return "", fmt.Errorf("exec.LookPath failed: %w", errors.Join(ErrNotFound, err))
	}
	return p, nil
}

// Chain tries each Locator in order and returns the first hit.
type Chain []Locator

// Locate implements Locator. The error lists every failed attempt.
func (c Chain) Locate() (string, error) {
	var errs []error
	for _, l := range c {
		p, err := l.Locate()
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNotFound
	}
	return "", errors.Join(errs...)
}

// DefaultLocator probes explicit, then the known install paths, then PATH.
func DefaultLocator(explicit, name string) Chain {
	if name == "" {
		name = "pdflatex"
	}
	return Chain{Explicit(explicit), DefaultKnownPaths, SearchPath(name)}
}

func executable(p string) error {
	fi, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("os.Stat failed: %w", errors.Join(ErrNotFound, err))
	}
	if fi.IsDir() || fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s: %w: not an executable file", p, ErrNotFound)
	}
	return nil
}
