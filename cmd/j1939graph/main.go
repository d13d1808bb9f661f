// Command j1939graph summarizes a candump format log as an indented
// source -> destination -> PGN breakdown with message counts, annotated with
// the latest ISO Address Claim (NAME) payload seen per source address.
// Messages matching the optional PGN filter are listed separately after the
// breakdown, in their original candump form.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	j1939 "github.com/truckbus/go-j1939-candump"
	"github.com/truckbus/go-j1939-candump/aggregate"
	"github.com/truckbus/go-j1939-candump/candump"
	"github.com/truckbus/go-j1939-candump/config"
	"github.com/truckbus/go-j1939-candump/report"
)

func main() {
	logPath := flag.String("file", "", "path to candump format log file")
	pgnFilterRaw := flag.String("filter", "", "comma separated list of PGNs of interest")
	configPath := flag.String("config", "", "path to config file with `path` and `pgns` fields (overrides -file and -filter)")
	flag.Parse()

	var err error
	var filter j1939.PGNFilter
	path := *logPath
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		path = cfg.Path
		filter = cfg.Filter()
	} else if *pgnFilterRaw != "" {
		filter, err = j1939.ParsePGNFilter(*pgnFilterRaw)
		if err != nil {
			log.Fatalf("invalid pgn filter given, %v\n", err)
		}
	}
	if path == "" {
		log.Fatal("# missing candump log path, use -file or -config\n")
	}
	if len(filter) > 0 {
		fmt.Printf("# Using PGN filter: %v\n", filter.PGNs())
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	tree := aggregate.NewTree()
	names := aggregate.NewNameTable()
	matched := make([]string, 0)
	malformedCount := 0

	r := candump.NewReader(file)
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var malformed *candump.MalformedLineError
		if errors.As(err, &malformed) {
			malformedCount++
			fmt.Fprintf(os.Stderr, "# skipping %v\n", malformed)
			continue
		}
		if err != nil {
			log.Fatal(err)
		}

		aggregate.Record(tree, names, frame)
		if len(filter) > 0 && filter.Match(frame.Header().PGN) {
			matched = append(matched, r.Text())
		}
	}

	if err := report.Write(os.Stdout, tree, names); err != nil {
		log.Fatal(err)
	}
	if len(matched) > 0 {
		fmt.Printf("\nMessages matching PGN filter:\n")
		for _, line := range matched {
			fmt.Println(line)
		}
	}
	if malformedCount > 0 {
		fmt.Fprintf(os.Stderr, "# skipped %v malformed lines\n", malformedCount)
	}
}
