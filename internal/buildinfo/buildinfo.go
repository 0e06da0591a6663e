// Package buildinfo reports the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/dreamcatcher/internal/buildinfo.Version=v1.2.0 \
//	    -X github.com/dmitrijs2005/dreamcatcher/internal/buildinfo.Date=$(date -u +%F) \
//	    -X github.com/dmitrijs2005/dreamcatcher/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = ""
	Date    = ""
	Commit  = ""
)

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PrintBuildData writes the build version, date and commit to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", valueOrNA(Version))
	fmt.Fprintf(w, "Build date: %s\n", valueOrNA(Date))
	fmt.Fprintf(w, "Build commit: %s\n", valueOrNA(Commit))
}
