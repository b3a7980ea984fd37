package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	slopplot "github.com/haowjy/slopplot-go"
)

// ProvidersCmd lists the provider catalog.
type ProvidersCmd struct{}

// Run executes the command.
func (c *ProvidersCmd) Run(a *app) error {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tNAME\tCREDENTIAL\tSTATUS")
	for _, spec := range a.catalog.Providers() {
		credential := spec.APIKeyEnv
		if credential == "" {
			credential = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spec.ID, spec.DisplayName, credential, status(a.registry, spec.ID))
	}
	return w.Flush()
}

func status(r *slopplot.ProviderRegistry, id slopplot.ProviderID) string {
	_, err := r.Resolve(id)
	switch {
	case err == nil:
		return "ready"
	case errors.Is(err, slopplot.ErrDependencyMissing):
		return "not linked"
	case slopplot.IsAuthError(err):
		return "missing credential"
	default:
		return err.Error()
	}
}
