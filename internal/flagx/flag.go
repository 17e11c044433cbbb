// Package flagx contains helpers that let several configuration layers share
// os.Args without tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowed, together with their
// values. Both "-f value" and "-f=value" forms are recognised. Flags listed in
// switches are boolean and never consume the following argument.
func FilterArgs(args []string, allowed []string, switches ...string) []string {
	known := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		known[f] = false
	}
	for _, f := range switches {
		known[f] = true
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := known[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		isSwitch, ok := known[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if isSwitch {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigFlags returns the config file path passed via -c or -config,
// or an empty string when neither is present.
func JsonConfigFlags() string {
	return jsonConfigPath(os.Args[1:])
}

func jsonConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
