// Package flagx lets several components parse their own flags out of the
// same command line.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values, and drops everything else. Both "-name value" and "-name=value"
// forms are recognised. As with the flag package, one or two leading dashes
// are equivalent, so "--config" matches an allowed "-config".
//
// A following argument is taken as the value unless it starts with a dash.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[flagName(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := allowed[flagName(name)]; !ok {
			continue
		}
		filtered = append(filtered, arg)

		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

func flagName(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "-"), "-")
}

// ConfigFileFlag returns the config file path given with -c or -config on
// the process command line, or "" if there is none.
func ConfigFileFlag() string {
	return ConfigFileFrom(os.Args[1:])
}

// ConfigFileFrom is ConfigFileFlag over explicit args. The last occurrence
// wins; the file may be JSON or TOML.
func ConfigFileFrom(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	fs.SetOutput(io.Discard)
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
