package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-psafe-cache/internal/app"
	"github.com/MKhiriev/go-psafe-cache/internal/service"
	"github.com/MKhiriev/go-psafe-cache/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := models.NewBuildInfo(buildVersion, buildDate, buildCommit)

	err := execute(context.Background(), info, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errorText(err))
		os.Exit(1)
	}
}

// errorText hides the details of errors the user can act on behind their
// message; anything else is printed as is.
func errorText(err error) string {
	code := service.ErrorCode(err)
	if code == service.CodeInternal {
		return err.Error()
	}
	return app.Message(err) + " (" + code + ")"
}
