package safety

import (
	"strings"

	vtexec "github.com/vtcode-ai/vtcode/internal/exec"
)

// AllowList is the closed set of base commands permitted to run without
// interactive approval. Project configuration may extend it.
var DefaultAllowList = map[string]bool{
	"ls": true, "cat": true, "cp": true, "head": true, "tail": true,
	"printenv": true, "pwd": true, "rg": true, "grep": true, "sed": true,
	"which": true, "wc": true, "sort": true, "uniq": true, "diff": true,
	"echo": true, "mkdir": true, "touch": true, "mv": true, "file": true,
	"git": true, "go": true, "find": true,
}

// forbiddenFlags lists, per base command, argument prefixes that let an
// otherwise-safe command shell out or escape the workspace. A match on
// any of these denies the whole invocation regardless of allow-list
// membership.
var forbiddenFlags = map[string][]string{
	"rg":    {"--pre", "--pre-glob", "--hostname-bin"},
	"grep":  {"--pre"},
	"sed":   {"-e/r", "-i/e"}, // sentinel entries checked specially below
	"find":  {"-exec", "-execdir", "-delete", "-fprintf", "-ok", "-okdir"},
	"xargs": {"-I", "-P"},
	"tar":   {"--to-command", "--checkpoint-action"},
	"git":   {"--exec-path", "-c", "--upload-pack", "--receive-pack"},
}

// denylistBases are never permitted, even via the shell-chain grammar's
// sub-command recursion: they are categorically execution primitives
// rather than data-plane commands.
var denylistBases = map[string]bool{
	"eval": true, "exec": true, "source": true, ".": true,
}

// validateArgs applies the per-command argument table plus the generic
// shell-metacharacter / control-char checks from internal/exec. It
// returns a non-empty reason when the invocation must be denied.
func validateArgs(base string, args []string) (reason string, denied bool) {
	if denylistBases[base] {
		return "command is always denied: " + base, true
	}

	for _, arg := range args {
		if !vtexec.IsSafeArgument(arg) {
			return "argument rejected by safety validator: " + arg, true
		}
	}

	forbidden := forbiddenFlags[base]
	for _, arg := range args {
		for _, bad := range forbidden {
			if bad == "-e/r" || bad == "-i/e" {
				continue
			}
			if arg == bad || strings.HasPrefix(arg, bad+"=") {
				return base + ": forbidden flag " + bad, true
			}
		}
	}

	if base == "sed" {
		for _, arg := range args {
			if strings.HasPrefix(arg, "-e") && strings.Contains(arg, "e") && strings.Contains(arg, "w ") {
				return "sed: forbidden write-through expression", true
			}
		}
	}

	return "", false
}

// isBlockedBinary reports whether an atom's base command is an
// executable-style value (absolute path, invalid name) rather than a
// bare allow-listed command name.
func isBlockedBinary(base string) bool {
	return !vtexec.IsSafeExecutableValue(base)
}

// dangerousAtoms are base/argument combinations denied outright,
// independent of the allow-list: platform automation primitives that
// can reach far outside the workspace (COM activation, remote process
// launch, browser navigation to an attacker-controlled URL).
var dangerousAtoms = []struct {
	base        string
	argContains string
	reason      string
}{
	{"powershell", "New-Object -ComObject", "PowerShell COM activation is denied"},
	{"powershell", "Start-Process", "PowerShell Start-Process is denied"},
	{"pwsh", "New-Object -ComObject", "PowerShell COM activation is denied"},
	{"mshta", "", "mshta is denied outright"},
	{"rundll32", "", "rundll32 is denied outright"},
	{"osascript", "", "osascript is denied outright"},
}

func checkDangerousPattern(atom ParsedCommand) (string, bool) {
	joined := strings.Join(atom.Args, " ")
	for _, d := range dangerousAtoms {
		if !strings.EqualFold(atom.Base, d.base) {
			continue
		}
		if d.argContains == "" || strings.Contains(joined, d.argContains) {
			return d.reason, true
		}
	}

	for _, arg := range atom.Args {
		if (strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")) &&
			(atom.Base == "start" || strings.EqualFold(atom.Base, "Start-Process")) {
			return "launching a browser with a remote URL is denied", true
		}
	}

	return "", false
}
