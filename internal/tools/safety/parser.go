// Package safety implements the command safety evaluator: the layered
// allow/deny gate every shell and PTY invocation passes through before
// it reaches an exec.Cmd.
package safety

import (
	"strings"
)

// Kind tags which branch of ParsedCommand is populated.
type Kind int

const (
	// KindAtom is a single command invocation: base + arguments.
	KindAtom Kind = iota
	// KindChain is a sequence of commands joined by shell operators
	// (&&, ||, ;, |).
	KindChain
)

// ParsedCommand is a tagged variant: either a single Atom or a Chain of
// further ParsedCommands joined by operators. This mirrors the shell's
// own grammar closely enough to evaluate each sub-command independently
// without building a full AST.
type ParsedCommand struct {
	Kind Kind

	// Atom fields.
	Base string
	Args []string

	// Chain fields. Ops has len(Parts)-1 entries; Ops[i] is the operator
	// between Parts[i] and Parts[i+1].
	Parts []ParsedCommand
	Ops   []string
}

// chainOperators lists the shell control operators that separate
// independently-evaluable sub-commands, ordered so multi-character
// operators are matched before their single-character prefixes.
var chainOperators = []string{"&&", "||", "|&", ";;", ";", "|"}

// ParseShellScript tokenizes a shell script (the argument to `bash -lc`,
// `sh -c`, etc.) into a ParsedCommand tree. It implements a tokenizer
// fallback rather than a full POSIX shell grammar: it understands single
// and double quoting, backslash escapes outside quotes, and the chain
// operators above. Constructs it cannot represent faithfully (command
// substitution, here-docs, process substitution) are folded into a
// single opaque Atom so the caller's allow-list still sees and can deny
// the literal text.
func ParseShellScript(script string) ParsedCommand {
	segments, ops := splitChain(script)
	if len(segments) <= 1 {
		return parseAtom(script)
	}

	parts := make([]ParsedCommand, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, ParseShellScript(seg))
	}
	return ParsedCommand{Kind: KindChain, Parts: parts, Ops: ops}
}

// splitChain splits script on the first encountered chain operator at
// the top quoting level, returning the segments and the operators found
// between them in order.
func splitChain(script string) ([]string, []string) {
	var segments []string
	var ops []string

	var buf strings.Builder
	inSingle, inDouble := false, false
	runes := []rune(script)

	flush := func() {
		segments = append(segments, buf.String())
		buf.Reset()
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && !inSingle && i+1 < len(runes):
			buf.WriteRune(c)
			buf.WriteRune(runes[i+1])
			i++
			continue
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			buf.WriteRune(c)
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			buf.WriteRune(c)
			continue
		}

		if inSingle || inDouble {
			buf.WriteRune(c)
			continue
		}

		if op, width := matchOperator(runes, i); op != "" {
			flush()
			ops = append(ops, op)
			i += width - 1
			continue
		}

		buf.WriteRune(c)
	}
	flush()

	trimmed := make([]string, 0, len(segments))
	for _, s := range segments {
		trimmed = append(trimmed, strings.TrimSpace(s))
	}
	return trimmed, ops
}

func matchOperator(runes []rune, i int) (string, int) {
	for _, op := range chainOperators {
		width := len(op)
		if i+width > len(runes) {
			continue
		}
		if string(runes[i:i+width]) == op {
			return op, width
		}
	}
	return "", 0
}

// parseAtom tokenizes a single command invocation (no top-level chain
// operators) into its base command and arguments, honoring quoting.
func parseAtom(command string) ParsedCommand {
	tokens := tokenize(command)
	if len(tokens) == 0 {
		return ParsedCommand{Kind: KindAtom}
	}
	return ParsedCommand{Kind: KindAtom, Base: tokens[0], Args: tokens[1:]}
}

func tokenize(s string) []string {
	var tokens []string
	var buf strings.Builder
	inSingle, inDouble := false, false
	hasToken := false

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && !inSingle && i+1 < len(runes):
			buf.WriteRune(runes[i+1])
			hasToken = true
			i++
			continue
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			hasToken = true
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			hasToken = true
			continue
		}

		if !inSingle && !inDouble && (c == ' ' || c == '\t' || c == '\n') {
			if hasToken {
				tokens = append(tokens, buf.String())
				buf.Reset()
				hasToken = false
			}
			continue
		}

		buf.WriteRune(c)
		hasToken = true
	}
	if hasToken {
		tokens = append(tokens, buf.String())
	}
	return tokens
}

// Atoms flattens a ParsedCommand into every Atom it contains, in
// left-to-right order. A Chain's sub-commands are visited recursively.
func (p ParsedCommand) Atoms() []ParsedCommand {
	if p.Kind == KindAtom {
		if p.Base == "" {
			return nil
		}
		return []ParsedCommand{p}
	}
	var out []ParsedCommand
	for _, part := range p.Parts {
		out = append(out, part.Atoms()...)
	}
	return out
}

// shellWrapperBases are base commands that take a script as an argument
// and hand it to a shell for evaluation; the evaluator must recurse into
// their script argument rather than treating the wrapper call alone as
// the unit of evaluation.
var shellWrapperBases = map[string]bool{
	"bash": true, "sh": true, "zsh": true, "dash": true, "ksh": true,
}

// ScriptArgument returns the quoted script passed to a `bash -lc "…"`
// style wrapper invocation, and true if this atom is such a wrapper.
func (p ParsedCommand) ScriptArgument() (string, bool) {
	if p.Kind != KindAtom || !shellWrapperBases[p.Base] {
		return "", false
	}
	for i, arg := range p.Args {
		switch arg {
		case "-c", "-lc", "-lc ":
			if i+1 < len(p.Args) {
				return p.Args[i+1], true
			}
		}
	}
	return "", false
}
