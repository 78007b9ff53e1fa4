// Command lcpconstruct builds the LCP array of text files with every
// selected strategy and checks that all of them agree with kasai.
package main

import (
	"Succinct/config"
	"Succinct/intvector"
	"Succinct/lcp"
	"Succinct/prepare"
	"Succinct/registry"
	"Succinct/utils"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const keyReference = "lcp_reference"

type result struct {
	file    string
	n       uint64
	kind    lcp.Kind
	size    int64
	took    time.Duration
	err     error
	differs bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("lcpconstruct", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.StringP("config", "c", "", "YAML configuration file")
	noProgress := fs.Bool("no-progress", false, "do not draw a progress bar")
	flags := config.Default()
	flags.AddFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: lcpconstruct [flags] FILE...\n\nStrategies: %v\n\n", lcp.Kinds())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return errors.New("no input files")
	}

	opts, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	opts.Override(fs, &flags)
	if err := opts.Validate(); err != nil {
		return err
	}
	kinds, _ := opts.Kinds()
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create artifact directory")
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(opts.Level())

	var bar *progressbar.ProgressBar
	if !*noProgress {
		bar = progressbar.Default(int64(len(files)*(len(kinds)+1)), "constructing")
	}

	var results []result
	for i, file := range files {
		rs, err := runFile(file, fmt.Sprintf("f%d", i), opts, kinds, logger, bar)
		if err != nil {
			return errors.Wrap(err, file)
		}
		results = append(results, rs...)
	}
	if bar != nil {
		bar.Finish()
	}
	return report(stdout, results)
}

// runFile prepares the inputs of one file, builds the kasai reference and
// runs every strategy against it.
func runFile(file, id string, opts config.Options, kinds []lcp.Kind, logger *logrus.Logger, bar *progressbar.ProgressBar) (results []result, err error) {
	log := logger.WithFields(logrus.Fields{"file": file, "id": id})
	reg := registry.New(opts.Dir, id)
	defer func() {
		if opts.KeepIntermediate {
			return
		}
		if derr := reg.DeleteAll(); err == nil && derr != nil {
			err = derr
		}
	}()

	describe(bar, "preparing "+filepath.Base(file))
	if err := prepare.TextFromFile(reg, file); err != nil {
		return nil, err
	}
	if err := prepare.SuffixArray(reg); err != nil {
		return nil, err
	}
	if err := prepare.BWT(reg); err != nil {
		return nil, err
	}
	if err := lcp.Construct(lcp.Kasai, reg, opts.Dir, id+"_reference"); err != nil {
		return nil, err
	}
	refLoc, _ := reg.Get(registry.KeyLCP)
	reg.Erase(registry.KeyLCP)
	reg.Put(keyReference, refLoc)
	want, err := reg.Digest(keyReference)
	if err != nil {
		return nil, err
	}
	advance(bar)

	inputs, err := inputReport(reg, file)
	if err != nil {
		return nil, err
	}
	log.WithField("inputs", inputs.Human()).Debug("inputs prepared")
	hdr, err := intvector.ReadHeader(reg.Location(registry.KeyText))
	if err != nil {
		return nil, err
	}

	for _, kind := range kinds {
		describe(bar, fmt.Sprintf("%s %s", kind, filepath.Base(file)))
		res := result{file: file, n: hdr.Len, kind: kind}
		s, _ := lcp.New(kind)
		runID := id + "_" + kind.String()
		start := time.Now()
		res.err = s.Construct(reg, opts.Construction(runID, log))
		res.took = time.Since(start)
		if res.err == nil {
			got, err := reg.Digest(registry.KeyLCP)
			if err != nil {
				return nil, err
			}
			res.differs = got != want
			if st, err := os.Stat(opts.Construction(runID, nil).Location()); err == nil {
				res.size = st.Size()
			}
			if !opts.KeepIntermediate {
				if err := reg.DeleteBacking(registry.KeyLCP); err != nil {
					return nil, err
				}
			} else {
				reg.Erase(registry.KeyLCP)
			}
		}
		results = append(results, res)
		advance(bar)
	}
	return results, nil
}

func inputReport(reg *registry.Registry, file string) (utils.MemReport, error) {
	var leaves []utils.MemReport
	for _, name := range []string{registry.KeyText, registry.KeySA, registry.KeyBWT, keyReference} {
		loc, err := reg.MustGet(name)
		if err != nil {
			return utils.MemReport{}, err
		}
		st, err := os.Stat(loc)
		if err != nil {
			return utils.MemReport{}, errors.Wrap(err, "stat "+name)
		}
		leaves = append(leaves, utils.Leaf(name, int(st.Size())))
	}
	return utils.NewMemReport(filepath.Base(file), leaves...), nil
}

func report(w io.Writer, results []result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tN\tSTRATEGY\tLCP\tTIME\tRESULT")
	failed := 0
	for _, r := range results {
		status := "ok"
		switch {
		case r.err != nil:
			status = "error: " + r.err.Error()
			failed++
		case r.differs:
			status = "differs from kasai"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			filepath.Base(r.file), humanize.Comma(int64(r.n)), r.kind,
			humanize.IBytes(uint64(r.size)), r.took.Round(time.Microsecond), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d of %d constructions failed", failed, len(results))
	}
	return nil
}

func describe(bar *progressbar.ProgressBar, desc string) {
	if bar != nil {
		bar.Describe(desc)
	}
}

func advance(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Add(1)
	}
}
