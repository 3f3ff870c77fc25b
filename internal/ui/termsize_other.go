//go:build !unix

package ui

import "os"

func TermWidth(_ *os.File, fallback int) int { return fallback }
