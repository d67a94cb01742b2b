// Command krua is the interpreter's command-line entry point: an
// interactive REPL by default, or file-run/disassemble subcommands.
// Grounded on kristofer-smog/cmd/smog/main.go's subcommand dispatch,
// generalized to krua's single-file source model (no separate bytecode
// format to compile/load), and on original_source/src/main.c for the
// REPL's own print/prompt conventions.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/StephenCrawley/krua/pkg/bytecode"
	"github.com/StephenCrawley/krua/pkg/compiler"
	"github.com/StephenCrawley/krua/pkg/value"
	"github.com/StephenCrawley/krua/pkg/vm"
)

const version = "0.1.0"

// maxLineLen bounds a single REPL/file line, matching original_source/src/
// limits.h's LINE_LEN.
const maxLineLen = 255

// diag logs process-level diagnostics (bad args, file I/O failures) to
// stderr, untimestamped so REPL transcripts stay diffable. It is kept
// separate from vm.Perror, which formats the interpreter's own error
// values.
var diag = log.New(os.Stderr, "", 0)

func main() {
	if len(os.Args) < 2 {
		runREPL()
		return
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		fmt.Printf("krua version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	case "repl":
		runREPL()
	case "run":
		if len(os.Args) < 3 {
			diag.Println("no file specified")
			printUsage()
			os.Exit(1)
		}
		runFile(os.Args[2])
	case "disassemble", "disasm":
		if len(os.Args) < 3 {
			diag.Println("no file specified")
			diag.Println("usage: krua disassemble <file.k>")
			os.Exit(1)
		}
		disassembleFile(os.Args[2])
	default:
		runFile(os.Args[1])
	}
}

func printUsage() {
	fmt.Println("krua - an array-oriented interpreter")
	fmt.Println("\nUsage:")
	fmt.Println("  krua                      Start interactive REPL")
	fmt.Println("  krua [file]               Run a source file")
	fmt.Println("  krua run [file]           Run a source file")
	fmt.Println("  krua disassemble [file]   Print a file's compiled bytecode")
	fmt.Println("  krua version              Print the version")
	fmt.Println("  krua help                 Print this message")
}

// runFile reads filename and Evals each of its lines in turn against one
// shared globals dictionary, printing results and errors the same way the
// REPL does.
func runFile(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		diag.Fatalf("reading file: %v", err)
	}

	globals := value.NewSymDict()
	for _, line := range strings.Split(string(data), "\n") {
		result, err := vm.Eval(line, &globals)
		if err != nil {
			if err == vm.ErrExit {
				return
			}
			fmt.Print(vm.Perror(err, line))
			continue
		}
		if !result.IsNil() {
			fmt.Println(vm.Sprint(result))
		}
	}
}

// disassembleFile compiles each of filename's lines without running them,
// printing the constant pool and opcode stream for one expression at a
// time, using bytecode.Mnemonic.
func disassembleFile(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		diag.Fatalf("reading file: %v", err)
	}

	for i, line := range strings.Split(string(data), "\n") {
		compiled, err := compiler.Load(value.CString(line), value.Null())
		if err != nil {
			fmt.Print(vm.Perror(err, line))
			continue
		}
		fmt.Printf("-- expression %d: %s\n", i, line)
		disassemble(compiled)
	}
}

func disassemble(compiled compiler.Compiled) {
	fmt.Println("Constants:")
	if compiled.Consts.IsHeap() {
		for i := int32(0); i < compiled.Consts.Count(); i++ {
			fmt.Printf("  [%d] %s\n", i, vm.Sprint(compiled.Consts.Elem(i)))
		}
	}

	fmt.Println("Instructions:")
	code := compiled.Code
	for i := int32(0); i < code.Count(); i++ {
		b := byte(code.Elem(i).TagVal())
		fmt.Printf("  %3d: %02x  %s", i, b, bytecode.Mnemonic(b))
		if b == bytecode.SpecialEnlist {
			i++
			n := byte(code.Elem(i).TagVal())
			fmt.Printf(" %d", n)
		}
		fmt.Println()
	}
}

// runREPL is krua's interactive loop, grounded on original_source/src/
// main.c's main(): a persistent globals dictionary, a two-space prompt,
// one Eval call per line, kprint on success and kperror on failure. A
// line beginning with a backslash ends the session (vm.ErrExit), which only this
// boundary is allowed to turn into a process exit.
func runREPL() {
	fmt.Printf("krua %s\n\n", version)

	globals := value.NewSymDict()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, maxLineLen), maxLineLen)

	for {
		fmt.Print("  ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				diag.Printf("input error: %v", err)
			}
			return
		}
		line := scanner.Text()

		result, err := vm.Eval(line, &globals)
		if err != nil {
			if err == vm.ErrExit {
				return
			}
			fmt.Print(vm.Perror(err, line))
			continue
		}
		if !result.IsNil() {
			fmt.Println(vm.Sprint(result))
		}
	}
}
