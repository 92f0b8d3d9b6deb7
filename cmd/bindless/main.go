package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/spirv-bindless/bindless"
	"github.com/wippyai/spirv-bindless/exec"
	"github.com/wippyai/spirv-bindless/spirv"
)

func main() {
	fields := flag.String("fields", "a:u32, b:s32", "Stored type as a field list (name:type, ...)")
	vector := flag.Uint("vector", 0, "Use a u32 vector of this many elements instead of -fields (load only)")
	op := flag.String("op", "both", "Functions to generate: store, load or both")
	index := flag.Uint("index", 0, "Buffer index used with -run")
	offset := flag.Int("offset", 0, "Byte offset used with -run")
	values := flag.String("values", "", "Comma-separated words stored with -run")
	out := flag.String("out", "", "Write the SPIR-V binary to this file")
	run := flag.Bool("run", false, "Execute the generated functions in the wasm sandbox")
	misaligned := flag.String("misaligned", "reject", "Misaligned field offsets: reject or truncate")
	nested := flag.Bool("nested", false, "Recurse into nested aggregate fields on load")
	outPointer := flag.Bool("out-pointer", false, "Deliver loads through an out pointer")
	verbose := flag.Bool("v", false, "Verbose logging")
	interactive := flag.Bool("i", false, "Interactive mode")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generates bindless buffer store/load functions as SPIR-V.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -fields 'a:u32, b:s32'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -fields 'a:u32, b:s32' -run -index 3 -offset 8 -values 10,20\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -vector 4 -out load.spv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i\n", os.Args[0])
	}
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			bindless.SetLogger(logger)
			spirv.SetLogger(logger)
			exec.SetLogger(logger)
			defer func() { _ = logger.Sync() }()
		}
	}

	policy, err := bindless.ParseMisalignedPolicy(*misaligned)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := buildOptions{
		fields:     *fields,
		vector:     *vector,
		op:         *op,
		misaligned: policy,
		nested:     *nested,
		outPointer: *outPointer,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(os.Stderr, "Error: interactive mode requires a terminal\n")
			os.Exit(1)
		}
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runOnce(opts, *out, *run, uint32(*index), uint32(int32(*offset)), *values); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(opts buildOptions, out string, run bool, index, offset uint32, values string) error {
	a, err := buildModule(opts)
	if err != nil {
		return err
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Print(render(styled, typeStyle, a.mod.Disassemble()))

	if out != "" {
		bin := a.mod.Bytes()
		if err := os.WriteFile(out, bin, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Print(render(styled, helpStyle, fmt.Sprintf("wrote %s (%d words)\n", out, len(bin)/4)))
	}

	if !run {
		return nil
	}
	words, err := parseWords(values)
	if err != nil {
		return err
	}
	res, err := execute(context.Background(), a, index, offset, words)
	if err != nil {
		return err
	}
	fmt.Print(render(styled, resultStyle, res.String()))
	return nil
}

func render(styled bool, style lipgloss.Style, s string) string {
	if !styled {
		return s
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return strings.Join(lines, "\n") + "\n"
}
