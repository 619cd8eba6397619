package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/tacklang/tack/compiler"
	"github.com/tacklang/tack/config"
	"github.com/tacklang/tack/pkg/bytecode"
)

const (
	historyFile = ".tack_history"
	prompt      = "tack> "
)

// runREPL reads lines, runs each through the whole pipeline against a
// persistent VM so globals survive across inputs.
func runREPL(cfg *config.Config) {
	fmt.Println("Tack REPL. Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	vm := bytecode.NewVM()
	vm.MaxSteps = cfg.Limits.MaxSteps
	vm.Trace = cfg.Debug.TraceVM

	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == ":quit" {
			return
		}

		// accept unterminated single statements at the prompt
		if !strings.HasSuffix(input, ";") && !strings.HasSuffix(input, "}") {
			input += ";"
		}

		if err := evalLine(vm, cfg, input); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
}

// evalLine compiles and runs one REPL input.
func evalLine(vm *bytecode.VM, cfg *config.Config, input string) error {
	tokens, err := compiler.NewScanner([]byte(input)).Scan()
	if err != nil {
		return err
	}
	if cfg.Debug.DumpTokens {
		fmt.Fprint(os.Stderr, compiler.DumpTokens(tokens))
	}

	stmts, err := compiler.Parse(tokens)
	if err != nil {
		return err
	}
	if cfg.Debug.DumpAST {
		fmt.Fprint(os.Stderr, compiler.FormatStmts(stmts))
	}

	chunk, err := compiler.NewCodeGen().Generate(stmts)
	if err != nil {
		return err
	}
	if cfg.Debug.DumpBytecode {
		fmt.Fprint(os.Stderr, chunk.Disassemble("repl"))
	}

	status, err := vm.Run(chunk)
	if status != bytecode.StatusOK {
		return fmt.Errorf("VM exited with status %s: %w", status, err)
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
