// romanize transliterates its arguments, or each line of stdin when called
// without arguments.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

var errUnsupported = errors.New("some input had no matching rules")

func main() {
	if err := mainE(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUnsupported) {
			slog.Error("fatal", "error", err)
		}
		os.Exit(1)
	}
}

func mainE(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := ff.NewFlagSet("romanize")
	var (
		script    = fs.StringLong("script", "", "Script id or alias (detected per input if empty)")
		rulesFile = fs.StringLong("rules-file", "", "YAML rule file extending or overriding the built-in tables")
		jsonOut   = fs.BoolLong("json", "Print one JSON result per input")
		strict    = fs.BoolLong("strict", "Exit non-zero if any input has an unsupported script")
		list      = fs.BoolLong("list", "List the available scripts and exit")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("ROMANIZE")); err != nil {
		fmt.Fprintf(stdout, "%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	engine, err := transliteration.NewFromRuleFile(*rulesFile)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	if *list {
		for _, t := range engine.Registry().Tables() {
			fmt.Fprintf(stdout, "%s\t%s\n", t.Script(), t.Name())
		}
		return nil
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	unsupported := false
	emit := func(text string) error {
		if err := transliteration.ValidateInput(text); err != nil {
			return err
		}
		res := engine.Transliterate(text, *script)
		if res.Status == transliteration.StatusUnsupportedScript {
			unsupported = true
		}
		if *jsonOut {
			return enc.Encode(res)
		}
		_, err := fmt.Fprintln(out, res.Transliterated)
		return err
	}

	if rest := fs.GetArgs(); len(rest) > 0 {
		for _, text := range rest {
			if err := emit(text); err != nil {
				return err
			}
		}
	} else {
		scanner := bufio.NewScanner(stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), transliteration.MaxInputBytes+1)
		for scanner.Scan() {
			if err := emit(scanner.Text()); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	if *strict && unsupported {
		return errUnsupported
	}
	return nil
}
