package grading

import "regexp"

// Static pre-flight scan for constructs no submission has a legitimate use
// for: shell invocation, dynamic evaluation, raw filesystem access. A match
// short-circuits grading before any sandbox call.

var denyList = map[string][]*regexp.Regexp{
	"javascript": compile(
		`require\s*\(\s*['"]child_process['"]`,
		`require\s*\(\s*['"]fs['"]`,
		`\beval\s*\(`,
		`new\s+Function\s*\(`,
		`process\.(exit|kill|env)`,
		`import\s*\(\s*['"]child_process['"]`,
	),
	"python": compile(
		`import\s+os\b`,
		`from\s+os\b`,
		`import\s+subprocess\b`,
		`import\s+shutil\b`,
		`\beval\s*\(`,
		`\bexec\s*\(`,
		`__import__\s*\(`,
		`\bopen\s*\(`,
	),
	"go": compile(
		`"os/exec"`,
		`"syscall"`,
		`"net"`,
		`"unsafe"`,
		`os\.(Open|Create|Remove|RemoveAll|WriteFile|ReadFile)\s*\(`,
	),
}

// Applied when the declared language has no dedicated list.
var genericDenyList = compile(
	`\beval\s*\(`,
	`\bexec\s*\(`,
	`\bsystem\s*\(`,
	`\bpopen\s*\(`,
)

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// Scan returns the first matched construct and whether anything matched.
func Scan(code, language string) (string, bool) {
	patterns, ok := denyList[language]
	if !ok {
		patterns = genericDenyList
	}
	for _, re := range patterns {
		if match := re.FindString(code); match != "" {
			return match, true
		}
	}
	return "", false
}
