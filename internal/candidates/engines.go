package candidates

import (
	"regexp"
	"strings"
)

// Step is one invocation of the program under test. Args may reference
// ${param-file}, ${output-dir}, ${database}, ${spectra} and ${index}.
type Step struct {
	Subcommand string   `yaml:"subcommand"`
	Args       []string `yaml:"args"`
}

// Engine describes how to produce one engine's result table.
type Engine struct {
	Name    string `yaml:"name"`
	Steps   []Step `yaml:"steps"`
	Results string `yaml:"results"` // File name inside the output directory
	Layout  Layout `yaml:"layout"`
}

// TideEngine indexes the database, then searches the index.
func TideEngine() Engine {
	common := []string{"--overwrite", "T", "--output-dir", "${output-dir}", "--parameter-file", "${param-file}"}
	return Engine{
		Name: "tide",
		Steps: []Step{
			{Subcommand: "tide-index", Args: append(append([]string{}, common...), "${database}", "${index}")},
			{Subcommand: "tide-search", Args: append(append([]string{}, common...), "${spectra}", "${index}")},
		},
		Results: "tide-search.txt",
		Layout:  TideLayout,
	}
}

// CometEngine searches the database in a single pass.
func CometEngine() Engine {
	return Engine{
		Name: "comet",
		Steps: []Step{
			{Subcommand: "comet", Args: []string{
				"--overwrite", "T", "--output-dir", "${output-dir}", "--parameter-file", "${param-file}",
				"${spectra}", "${database}",
			}},
		},
		Results: "comet.target.txt",
		Layout:  CometLayout,
	}
}

// varPattern matches ${name} references in step arguments.
var varPattern = regexp.MustCompile(`\$\{([a-z-]+)\}`)

// expand substitutes known variables in args; unknown references are kept.
func expand(args []string, vars map[string]string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = varPattern.ReplaceAllStringFunc(arg, func(m string) string {
			name := strings.TrimSuffix(strings.TrimPrefix(m, "${"), "}")
			if v, ok := vars[name]; ok {
				return v
			}
			return m
		})
	}
	return out
}
