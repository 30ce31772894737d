package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/strux"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var CheckCmd = &cobra.Command{
	Use:          "check [files or folders...]",
	Short:        "Type check source files",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	checkSeparate *bool
	checkMetrics  *bool
	checkColor    *string
)

// ErrDiagnostics is returned by check when it reports errors
var ErrDiagnostics = errors.New("errors found during checking")

func init() {
	checkSeparate = CheckCmd.Flags().Bool("separate", false, "check each file in a session of its own, concurrently")
	checkMetrics = CheckCmd.Flags().Bool("metrics", false, "print session metrics in Prometheus text format")
	checkColor = CheckCmd.Flags().String("color", "auto", "colour diagnostics: auto, always or never")
}

// checkResult is the outcome of one session
type checkResult struct {
	program *strux.Program
	bag     *diag.Bag
	bytes   int
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	files, err := readFiles(args)
	if err != nil {
		return err
	}
	start := time.Now()

	var groups [][]strux.File
	if *checkSeparate {
		for _, f := range files {
			groups = append(groups, []strux.File{f})
		}
	} else {
		groups = [][]strux.File{files}
	}
	results := make([]checkResult, len(groups))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, group := range groups {
		g.Go(func() error {
			res, err := checkSession(ctx, group, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := useColor(*checkColor, out)
	errorCount, warningCount, totalBytes := 0, 0, 0
	for _, res := range results {
		for _, d := range res.bag.Sorted() {
			fmt.Fprintln(out, formatDiagnostic(res.program, d, color))
		}
		for _, failure := range res.program.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "internal failure: %+v\n", failure)
		}
		errorCount += res.bag.Count(diag.Error)
		warningCount += res.bag.Count(diag.Warning)
		totalBytes += res.bytes
	}
	fmt.Fprintf(out, "checked %s in %s (%s, %d %s): %s, %s\n",
		plural(len(files), "file"),
		time.Since(start).Round(time.Millisecond),
		humanize.Bytes(uint64(totalBytes)),
		len(groups), pluralWord(len(groups), "session"),
		plural(errorCount, "error"),
		plural(warningCount, "warning"),
	)

	if *checkMetrics {
		for _, res := range results {
			if err := writeMetrics(out, res.program); err != nil {
				return err
			}
		}
	}
	if errorCount > 0 {
		return errors.Wrapf(ErrDiagnostics, "%s", plural(errorCount, "error"))
	}
	return nil
}

func checkSession(ctx context.Context, files []strux.File, opts config.Options) (checkResult, error) {
	p, err := strux.NewProgram(files, strux.FilesResolver(files), opts)
	if err != nil {
		return checkResult{}, err
	}
	bag, err := p.Check(ctx)
	if err != nil {
		return checkResult{}, err
	}
	res := checkResult{program: p, bag: bag}
	for _, f := range files {
		res.bytes += len(f.Source)
	}
	return res, nil
}

func writeMetrics(w io.Writer, p *strux.Program) error {
	families, err := p.Gatherer().Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	fmt.Fprintf(w, "# session %s\n", p.ID())
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, "encode metrics")
		}
	}
	return nil
}

// useColor decides whether to colour output written to w
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func formatDiagnostic(p *strux.Program, d *diag.Diagnostic, color bool) string {
	s := diag.Format(p.FileSet(), d)
	if !color {
		return s
	}
	switch d.Category {
	case diag.Error:
		return ansiRed + s + ansiReset
	case diag.Warning:
		return ansiYellow + s + ansiReset
	}
	return s
}

func plural(n int, word string) string {
	return humanize.Comma(int64(n)) + " " + pluralWord(n, word)
}

func pluralWord(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
