// Package flagx lets several independent flag sets share os.Args: each one
// filters out the arguments it understands before parsing.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Allowed lists the flags a caller wants to keep. Value flags consume the
// following argument when it does not look like another flag; bool flags
// never do.
type Allowed struct {
	Value []string
	Bool  []string
}

func (a Allowed) kinds() map[string]bool {
	m := make(map[string]bool, len(a.Value)+len(a.Bool))
	for _, f := range a.Value {
		m[f] = true
	}
	for _, f := range a.Bool {
		m[f] = false
	}
	return m
}

// FilterArgs returns the allowed flags (and their values) from args, in order.
//
// Supported formats:
//
//	-c conf.json
//	--config=conf.json
//	-skip-migrations
func FilterArgs(args []string, allowed Allowed) []string {
	kinds := allowed.kinds()
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, known := kinds[name]; known {
				filtered = append(filtered, arg)
			}
			continue
		}

		takesValue, known := kinds[arg]
		if !known {
			continue
		}
		filtered = append(filtered, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given with -c or -config.
// The last occurrence wins; an empty string means no file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Allowed{Value: []string{"-c", "-config", "--config"}}))

	return path
}
