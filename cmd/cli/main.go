// Package main provides the linkshelf CLI: a terminal client for a LinkShelf
// server plus direct export and import against its database.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
)

const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode separates problems the user can fix from server or network
// failures.
func exitCode(err error) int {
	var de *domain.Error
	if errors.As(err, &de) && (de.Code == domain.CodeTransport || de.Code == domain.CodeInternal) {
		return exitSysError
	}
	return exitUserError
}
