// Package program translates Vadalog programs into the dialect each tool reads.
package program

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackzampolin/reasonbench/internal/tools"
)

var ErrMultipleOutputs = errors.New("DLV programs support a single @output predicate")

var (
	commentPattern    = regexp.MustCompile(`%.*`)
	annotationPattern = regexp.MustCompile(`^\s*@(bind|mapping|input)\b`)
	outputPattern     = regexp.MustCompile(`@output\("([^"]*)"\)`)
	atomPattern       = regexp.MustCompile(`([A-Za-z0-9_]+)\(([^()]*)\)`)
	existsPattern     = regexp.MustCompile(`^#exists\{([^}]*)\}`)
)

// Translate renders src for the given tool.
func Translate(id tools.ToolID, src string) (string, error) {
	switch id {
	case tools.Vadalog:
		return ForVadalog(src), nil
	case tools.DLV:
		return ForDLV(src)
	default:
		return "", fmt.Errorf("%w: %s", tools.ErrUnknownTool, id)
	}
}

// ForVadalog strips comments and the @bind, @mapping and @input annotations:
// inputs are bound on the command line instead.
func ForVadalog(src string) string {
	return strings.Join(strip(src, false), "\n")
}

// strip removes comments and input annotations. Lines that held only a
// comment or an annotation disappear; other blank lines survive unless
// dropBlank is set.
func strip(src string, dropBlank bool) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		if annotationPattern.MatchString(line) {
			continue
		}
		if loc := commentPattern.FindStringIndex(line); loc != nil {
			line = line[:loc[0]]
			if strings.TrimSpace(line) == "" {
				continue
			}
		}
		if dropBlank && strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ForDLV converts a Vadalog program to DLV^E syntax:
//   - rules whose head has variables missing from the body get an
//     #exists{...} prefix listing them, sorted;
//   - the @output("p") annotation becomes a query p(X0,...,Xn)? appended
//     after the rules, existential where the defining rule's head is.
func ForDLV(src string) (string, error) {
	var (
		rules   []string
		outputs = map[string]bool{}
	)
	for _, line := range strip(src, true) {
		if m := outputPattern.FindStringSubmatch(line); m != nil {
			outputs[m[1]] = true
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			continue
		}
		rules = append(rules, existentialRule(line))
	}

	out := strings.Join(rules, "\n")
	switch len(outputs) {
	case 0:
		return out, nil
	case 1:
	default:
		names := make([]string, 0, len(outputs))
		for name := range outputs {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("%w: %s", ErrMultipleOutputs, strings.Join(names, ", "))
	}

	var predicate string
	for name := range outputs {
		predicate = name
	}
	query, err := outputQuery(rules, predicate)
	if err != nil {
		return "", err
	}
	return out + "\n" + query, nil
}

// existentialRule prefixes a rule with #exists{...} when its head introduces
// variables. Facts and lines without a body are returned unchanged.
func existentialRule(line string) string {
	head, body, ok := strings.Cut(line, ":-")
	if !ok {
		return line
	}
	bodyVars := map[string]bool{}
	for _, m := range atomPattern.FindAllStringSubmatch(body, -1) {
		for _, v := range terms(m[2]) {
			bodyVars[v] = true
		}
	}

	var exist []string
	seen := map[string]bool{}
	for _, m := range atomPattern.FindAllStringSubmatch(head, -1) {
		for _, v := range terms(m[2]) {
			if isVariable(v) && !bodyVars[v] && !seen[v] {
				seen[v] = true
				exist = append(exist, v)
			}
		}
	}
	if len(exist) == 0 {
		return line
	}
	sort.Strings(exist)
	return "#exists{" + strings.Join(exist, ",") + "}" + line
}

// outputQuery builds the DLV query for predicate from the head of the first
// rule defining it.
func outputQuery(rules []string, predicate string) (string, error) {
	for _, rule := range rules {
		head, _, _ := strings.Cut(rule, ":-")
		head = strings.TrimSpace(head)

		var exist map[string]bool
		if m := existsPattern.FindStringSubmatch(head); m != nil {
			exist = map[string]bool{}
			for _, v := range terms(m[1]) {
				exist[v] = true
			}
			head = head[len(m[0]):]
		}

		m := atomPattern.FindStringSubmatch(head)
		if m == nil || m[1] != predicate {
			continue
		}

		vars := terms(m[2])
		args := make([]string, len(vars))
		var existArgs []string
		for i, v := range vars {
			args[i] = fmt.Sprintf("X%d", i)
			if exist[v] {
				existArgs = append(existArgs, args[i])
			}
		}
		query := predicate + "(" + strings.Join(args, ",") + ")?"
		if len(existArgs) > 0 {
			query = "#exists{" + strings.Join(existArgs, ",") + "}" + query
		}
		return query, nil
	}
	return "", fmt.Errorf("output predicate %q is not defined by any rule", predicate)
}

func terms(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isVariable follows the Datalog convention: variables start with an
// upper-case letter or an underscore.
func isVariable(term string) bool {
	if term == "" {
		return false
	}
	c := term[0]
	return c == '_' || (c >= 'A' && c <= 'Z')
}
