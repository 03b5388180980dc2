// playground is an interactive terminal UI for trying out rule tables.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jusunglee/romanize/internal/playground"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	fs := ff.NewFlagSet("romanize-playground")
	rulesFile := fs.StringLong("rules-file", "", "YAML rule file extending or overriding the built-in tables")

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("ROMANIZE")); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	engine, err := transliteration.NewFromRuleFile(*rulesFile)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	return playground.Run(engine)
}
