// Command pgngrep filters a candump format log by PGN and re-emits matching
// lines in their original form. Log path and PGNs come from positional
// arguments, from a config file, or from an interactive prompt when neither
// is given:
//
//	pgngrep path/to/dump.log 8192 60928
//	pgngrep -config pgngrep.conf
//	pgngrep
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	j1939 "github.com/truckbus/go-j1939-candump"
	"github.com/truckbus/go-j1939-candump/candump"
	"github.com/truckbus/go-j1939-candump/config"
)

// defaultConfigName is picked up from the working directory when no
// arguments are given, like the conf file next to the original tool.
const defaultConfigName = "pgngrep.conf"

func main() {
	configPath := flag.String("config", "", "path to config file with `path` and `pgns` fields")
	flag.Parse()

	path, filter, err := resolveArgs(*configPath, flag.Args(), os.Stdin)
	if err != nil {
		log.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if err := grep(file, os.Stdout, filter); err != nil {
		log.Fatal(err)
	}
}

// resolveArgs decides log path and PGN filter: explicit config file first,
// then positional arguments, then the default conf file, finally an
// interactive prompt. Positional arguments win over the default conf file so
// a stray `pgngrep.conf` in the working directory can not hijack an explicit
// invocation.
func resolveArgs(configPath string, args []string, stdin io.Reader) (string, j1939.PGNFilter, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", nil, err
		}
		return cfg.Path, cfg.Filter(), nil
	}

	if len(args) > 0 {
		filter, err := parsePGNArgs(args[1:])
		if err != nil {
			return "", nil, err
		}
		return args[0], filter, nil
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		cfg, err := config.Load(defaultConfigName)
		if err != nil {
			return "", nil, err
		}
		return cfg.Path, cfg.Filter(), nil
	}

	// interactive session
	prompt := bufio.NewScanner(stdin)
	fmt.Print("enter path to candump file: ")
	if !prompt.Scan() {
		return "", nil, errors.New("no path given")
	}
	path := strings.TrimSpace(prompt.Text())

	fmt.Print("enter pgns of interest separated by spaces: ")
	if !prompt.Scan() {
		return "", nil, errors.New("no pgns given")
	}
	filter, err := parsePGNArgs(strings.Fields(prompt.Text()))
	if err != nil {
		return "", nil, err
	}
	return path, filter, nil
}

func parsePGNArgs(args []string) (j1939.PGNFilter, error) {
	filter := make(j1939.PGNFilter)
	for _, arg := range args {
		pgn, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid PGN %q, err: %w", arg, err)
		}
		filter[uint32(pgn)] = struct{}{}
	}
	return filter, nil
}

// grep copies lines whose decoded PGN passes the filter from in to out,
// preserving their original candump textual form. Malformed lines are
// diagnosed to stderr and skipped.
func grep(in io.Reader, out io.Writer, filter j1939.PGNFilter) error {
	r := candump.NewReader(in)
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var malformed *candump.MalformedLineError
		if errors.As(err, &malformed) {
			fmt.Fprintf(os.Stderr, "# skipping %v\n", malformed)
			continue
		}
		if err != nil {
			return err
		}

		if !filter.Match(frame.Header().PGN) {
			continue
		}
		if _, err := fmt.Fprintln(out, r.Text()); err != nil {
			return err
		}
	}
}
