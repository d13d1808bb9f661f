// Package report renders the aggregated traffic breakdown as indented text.
// Layout here is presentation only, counts and ordering come from the
// aggregate package.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/truckbus/go-j1939-candump/aggregate"
)

// Write renders the NAME table and the source -> destination -> PGN
// breakdown of tree. Keys are listed in ascending numeric order on every
// level so output is deterministic for a given tree.
func Write(w io.Writer, tree aggregate.Tree, names aggregate.NameTable) error {
	b := strings.Builder{}

	b.WriteString("NAME messages seen by source address:\n")
	if len(names) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, src := range names.Sources() {
		payload := names[src]
		fmt.Fprintf(&b, "  %d: %X%s\n", src, payload, describeName(payload))
	}

	b.WriteString("\nBreakdown of messages in log:\n")
	b.WriteString("src / destination / pgn: count\n")
	b.WriteString("==============================\n")
	for _, src := range tree.Sources() {
		fmt.Fprintf(&b, "%d\n", src)
		for _, dst := range tree.Destinations(src) {
			fmt.Fprintf(&b, "|--- %d\n", dst)
			for _, pgn := range tree.PGNs(src, dst) {
				fmt.Fprintf(&b, "|     |--- %d: %d\n", pgn, tree.Count(src, dst, pgn))
			}
		}
	}
	fmt.Fprintf(&b, "\nTotal: %s messages\n", humanize.Comma(int64(tree.Total())))

	_, err := io.WriteString(w, b.String())
	return err
}

func describeName(payload []byte) string {
	name, err := aggregate.DecodeNodeName(payload)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (identity: %d, manufacturer: %d, function: %d, industry group: %d)",
		name.IdentityNumber, name.ManufacturerCode, name.Function, name.IndustryGroup)
}
