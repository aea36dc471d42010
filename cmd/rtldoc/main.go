// Command rtldoc generates Persian contracts and estimates as PDF or DOCX.
//
// Usage:
//
//	rtldoc generate -kind contract -record contract.json [-format docx] [-out file]
//	rtldoc generate -kind estimate -id 42
//	rtldoc inspect document.pdf
//	rtldoc shape "متن فارسی with Latin"
//	rtldoc template -kind contract > contract.yaml
//
// Every command reads the configuration file named by -config or
// RTLDOC_CONFIG, then RTLDOC_* environment variables.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/lvillar/rtldoc"
	"github.com/lvillar/rtldoc/config"
	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/emit/docx"
	"github.com/lvillar/rtldoc/internal/app"
	"github.com/lvillar/rtldoc/internal/logger"
	"github.com/lvillar/rtldoc/internal/pdftext"
	"github.com/lvillar/rtldoc/record"
	"github.com/lvillar/rtldoc/rtl"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: rtldoc <command> [flags]

commands:
  generate   generate a document from a record file or a stored record id
  inspect    print the text of a generated PDF or DOCX
  shape      print text in display order with Arabic contextual forms
  template   print the template of a document kind as YAML
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "generate":
		err = generate(ctx, rest, stdin, stdout, stderr)
	case "inspect":
		err = inspect(rest, stdout, stderr)
	case "shape":
		err = shape(rest, stdin, stdout, stderr)
	case "template":
		err = template(rest, stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "rtldoc: unknown command %q\n%s", cmd, usage)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	}
	fmt.Fprintf(stderr, "rtldoc: %v\n", err)
	return exitError
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse parses args. Flag errors are usage errors; the flag set has
// already reported them.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

// setup loads the configuration and builds the logger.
func setup(configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func generate(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("generate", stderr)
	configPath := fs.String("config", os.Getenv("RTLDOC_CONFIG"), "path to the YAML configuration file")
	kindName := fs.String("kind", "", "document kind: contract or estimate")
	recordPath := fs.String("record", "", `record JSON file, "-" for stdin`)
	id := fs.String("id", "", "record id in the configured store")
	formatName := fs.String("format", "", "output format: pdf or docx (default from configuration)")
	out := fs.String("out", "", `output file, "-" for stdout (default: output directory and generated name)`)
	if err := parse(fs, args); err != nil {
		return err
	}
	if (*recordPath == "") == (*id == "") {
		fmt.Fprintln(stderr, "generate: exactly one of -record and -id is required")
		return errUsage
	}
	kind, err := record.ParseKind(*kindName)
	if err != nil {
		return err
	}

	cfg, log, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if *formatName == "" {
		*formatName = cfg.Output.Format
	}
	format, err := rtldoc.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	eng, err := app.NewEngine(cfg, log, nil)
	if err != nil {
		return err
	}

	var res *rtldoc.Result
	if *recordPath != "" {
		rec, err := readRecord(kind, *recordPath, stdin)
		if err != nil {
			return err
		}
		if res, err = eng.Generate(ctx, rec, format); err != nil {
			return err
		}
	} else {
		src, release, err := app.NewSource(ctx, cfg.Records, log)
		if err != nil {
			return err
		}
		defer release()
		if res, err = eng.GenerateByID(ctx, src, kind, *id, format); err != nil {
			return err
		}
	}

	switch *out {
	case "-":
		_, err = stdout.Write(res.Data)
		return err
	case "":
		*out = filepath.Join(cfg.Output.Dir, res.Filename)
	}
	if err := os.WriteFile(*out, res.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s (%d pages, %d bytes)\n", *out, res.Pages, len(res.Data))
	return nil
}

func readRecord(kind record.Kind, path string, stdin io.Reader) (record.Record, error) {
	if path == "-" {
		return record.Decode(kind, stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return record.Decode(kind, f)
}

func inspect(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "inspect: one file is required")
		return errUsage
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		pages, err := pdftext.Pages(data)
		if err != nil {
			return err
		}
		for i, text := range pages {
			fmt.Fprintf(stdout, "--- Page %d ---\n%s\n", i+1, text)
		}
		return nil
	case bytes.HasPrefix(data, []byte("PK")):
		text, err := docx.Text(data)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, text)
		return nil
	}
	return fmt.Errorf("inspect: %s is neither PDF nor DOCX", fs.Arg(0))
}

func shape(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("shape", stderr)
	base := fs.String("base", "auto", "paragraph direction: auto, rtl or ltr")
	if err := parse(fs, args); err != nil {
		return err
	}

	var dir rtl.Direction
	switch strings.ToLower(*base) {
	case "auto":
		dir = rtl.Auto
	case "rtl":
		dir = rtl.RTL
	case "ltr":
		dir = rtl.LTR
	default:
		fmt.Fprintf(stderr, "shape: invalid direction %q\n", *base)
		return errUsage
	}
	shaper := rtl.NewShaper(rtl.WithBase(dir))

	if fs.NArg() > 0 {
		fmt.Fprintln(stdout, shaper.Visual(strings.Join(fs.Args(), " ")))
		return nil
	}
	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		fmt.Fprintln(stdout, shaper.Visual(sc.Text()))
	}
	return sc.Err()
}

func template(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("template", stderr)
	configPath := fs.String("config", os.Getenv("RTLDOC_CONFIG"), "path to the YAML configuration file")
	kindName := fs.String("kind", "", "document kind: contract or estimate")
	if err := parse(fs, args); err != nil {
		return err
	}
	kind, err := record.ParseKind(*kindName)
	if err != nil {
		return err
	}
	cfg, log, err := setup(*configPath)
	if err != nil {
		return err
	}
	eng, err := app.NewEngine(cfg, log, nil)
	if err != nil {
		return err
	}
	tpl, err := eng.Template(kind)
	if err != nil {
		return err
	}
	return doctpl.Encode(stdout, tpl)
}
