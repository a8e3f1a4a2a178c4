package cli

import "github.com/spf13/pflag"

// addExpectedVersionFlag registers the optimistic-concurrency guard shared
// by approve, reject and restore.
func addExpectedVersionFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVar(p, "expected-version", "",
		"Fail if the project version moved past this value")
}
