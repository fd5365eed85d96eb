// Package flagx lets several independent components parse their own flags out
// of one command line without tripping over each other.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values. Both "-f value" and "-f=value" forms are recognised; a following
// token that starts with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag returns the JSON config path given via -c or -config in args
// (usually os.Args[1:]), or "" when neither is present. The last one wins.
func ConfigFileFlag(args []string) string {
	return stringFlag(args, "config", "c")
}

// EnvFileFlag returns the dotenv path given via -env, or "".
func EnvFileFlag(args []string) string {
	return stringFlag(args, "env", "")
}

func stringFlag(args []string, long, short string) string {
	var value string

	names := []string{"-" + long}
	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&value, long, "", long)
	if short != "" {
		names = append(names, "-"+short)
		fs.StringVar(&value, short, "", long+" (short)")
	}
	fs.SetOutput(discard{})
	_ = fs.Parse(FilterArgs(args, names))

	return value
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
