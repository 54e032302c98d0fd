// Command import-exercises seeds the exercise catalogue from IMPORT_SOURCE
// (a local path or gs:// URI, default data/exercises.json). It takes no
// flags and exits 0 on success and 1 on failure.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Megloux/mosaic/pkg/bootstrap"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/importjob"
)

// ImportFunc performs one import and reports its outcome.
type ImportFunc func(ctx context.Context) exercises.Result

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr, serviceImport))
}

// serviceImport wires the real dependencies. Logs go to stderr so stdout
// carries only the status line.
func serviceImport(ctx context.Context, stderr io.Writer) (ImportFunc, error) {
	bootstrap.SetLogOutput(stderr)
	svc, err := bootstrap.NewService(ctx)
	if err != nil {
		return nil, err
	}
	return importjob.New(svc, "cli", svc.Config.ImportSource), nil
}

func newRootCmd(stdout, stderr io.Writer, setup func(context.Context, io.Writer) (ImportFunc, error), code *int) *cobra.Command {
	return &cobra.Command{
		Use:           "import-exercises",
		Short:         "Import exercises into the catalogue",
		Long:          "Reads exercises from IMPORT_SOURCE (local JSON/CSV or gs://bucket/object) and upserts them by slug.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			importFn, err := setup(cmd.Context(), stderr)
			if err != nil {
				fmt.Fprintf(stderr, "Import failed: %v\n", err)
				*code = 1
				return nil
			}
			*code = run(cmd.Context(), importFn, stdout, stderr)
			return nil
		},
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, setup func(context.Context, io.Writer) (ImportFunc, error)) int {
	code := 0
	cmd := newRootCmd(stdout, stderr, setup, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Import failed: %v\n", err)
		return 1
	}
	return code
}

// run awaits a single import and maps its result to an exit code.
func run(ctx context.Context, importFn ImportFunc, stdout, stderr io.Writer) int {
	res := importFn(ctx)
	if res.Success {
		fmt.Fprintf(stdout, "Successfully imported %d exercises\n", res.ImportedCount)
		return 0
	}
	msg := res.Error
	if msg == "" {
		msg = "unknown error"
	}
	fmt.Fprintf(stderr, "Import failed: %s\n", msg)
	return 1
}
