package cmdline

import (
	"strings"

	"github.com/iconoclast/childprocess/errors"
)

const blanks = " \t\n\v"

// Quote encodes a single argument. Arguments without whitespace or double
// quotes are returned unchanged; backslashes are only escaped where they
// precede a double quote.
func Quote(arg string) string {
	if arg == "" {
		return `""`
	}
	wrap := strings.ContainsAny(arg, blanks)
	if !wrap && !strings.ContainsRune(arg, '"') {
		return arg
	}

	var b strings.Builder
	b.Grow(len(arg) + 2)
	if wrap {
		b.WriteByte('"')
	}
	slashes := 0
	for i := 0; i < len(arg); i++ {
		switch c := arg[i]; c {
		case '\\':
			slashes++
			b.WriteByte(c)
		case '"':
			// 2N+1 backslashes: N literal ones, then a literal quote.
			b.WriteString(strings.Repeat(`\`, slashes))
			b.WriteString(`\"`)
			slashes = 0
		default:
			slashes = 0
			b.WriteByte(c)
		}
	}
	if wrap {
		// Trailing backslashes would otherwise escape the closing quote.
		b.WriteString(strings.Repeat(`\`, slashes))
		b.WriteByte('"')
	}
	return b.String()
}

// QuoteProgram encodes the program name, argv[0]. The splitter reads the
// program name without backslash processing, so it is only ever wrapped in
// quotes, and a program name containing a double quote cannot be encoded.
func QuoteProgram(name string) (string, error) {
	if strings.ContainsRune(name, '"') {
		return "", errors.InvalidInput("argv[0]", "program name contains a double quote")
	}
	if name == "" || strings.ContainsAny(name, blanks) {
		return `"` + name + `"`, nil
	}
	return name, nil
}

// Join encodes args into one command line. args must not be empty.
func Join(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.MissingField("argv")
	}
	prog, err := QuoteProgram(args[0])
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(prog)
	for _, arg := range args[1:] {
		b.WriteByte(' ')
		b.WriteString(Quote(arg))
	}
	return b.String(), nil
}

// Split parses a command line the way CommandLineToArgvW does: the program
// name ends at the next blank or closing quote, and every later argument
// follows the backslash-and-quote rules Quote encodes for.
func Split(line string) []string {
	var args []string
	prog, rest := readProgram(line)
	if prog == "" && rest == "" && line == "" {
		return nil
	}
	args = append(args, prog)
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return args
		}
		var arg string
		arg, rest = readArg(rest)
		args = append(args, arg)
	}
}

func readProgram(line string) (prog, rest string) {
	if strings.HasPrefix(line, `"`) {
		end := strings.IndexByte(line[1:], '"')
		if end < 0 {
			return line[1:], ""
		}
		return line[1 : end+1], line[end+2:]
	}
	end := strings.IndexAny(line, " \t")
	if end < 0 {
		return line, ""
	}
	return line[:end], line[end:]
}

func readArg(s string) (arg, rest string) {
	var b strings.Builder
	inQuote := false
	slashes := 0
	i := 0
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			slashes++
			continue
		case c == '"':
			b.WriteString(strings.Repeat(`\`, slashes/2))
			if slashes%2 == 1 {
				b.WriteByte('"')
				slashes = 0
				continue
			}
			slashes = 0
			if inQuote && i+1 < len(s) && s[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			inQuote = !inQuote
			continue
		}
		b.WriteString(strings.Repeat(`\`, slashes))
		slashes = 0
		if (c == ' ' || c == '\t') && !inQuote {
			break
		}
		b.WriteByte(c)
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	return b.String(), s[i:]
}
