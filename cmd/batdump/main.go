// batdump builds, inspects and queries BAT term archives.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.3.0"

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "batdump: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:], stdout, stderr)
	case "inspect":
		return runInspect(ctx, args[1:], stdout, stderr)
	case "lookup":
		return runLookup(ctx, args[1:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "batdump v%s\n", version)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	usage := `batdump - build and read BAT term archives

Usage:
  batdump <command> [options]

Available Commands:
  build       Build an archive from a tab-separated term list
  inspect     Print the container tree of an archive
  lookup      Print the key of a term
  help        Show this help message
  version     Show version information

Global Flags:
  --config PATH         YAML settings file
  --log-level LEVEL     debug, info, warn or error
  --metrics-addr ADDR   serve Prometheus metrics while the command runs

Examples:
  # Build an archive, compressing chapter contents
  batdump build --in terms.tsv --out data.bat --compress

  # Show chapters, term counts and key widths
  batdump inspect data.bat

  # Also list each chapter's terms with their slot codes
  batdump inspect --terms data.bat

  # Find the key of a subject
  batdump lookup data.bat subjects_absolute http://example.org/alice
`
	fmt.Fprint(w, usage)
}
