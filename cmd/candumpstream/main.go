// Command candumpstream reads frames from a live bus and prints them to
// stdout as candump format lines, one per frame in arrival order. Source is
// either a SocketCAN interface or a serial attached gateway that emits
// candump lines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tarm/serial"
	"github.com/truckbus/go-j1939-candump/candump"
	"github.com/truckbus/go-j1939-candump/socketcan"
)

func main() {
	ifName := flag.String("interface", "vcan0", "SocketCAN interface to read, for example can0")
	serialPath := flag.String("serial", "", "read candump lines from serial device instead of SocketCAN")
	baudRate := flag.Int("baud", 115200, "serial device baud rate")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var count uint64
	var err error
	if *serialPath != "" {
		fmt.Fprintf(os.Stderr, "# Streaming from serial device: %v\n", *serialPath)
		count, err = streamSerial(ctx, *serialPath, *baudRate)
	} else {
		fmt.Fprintf(os.Stderr, "# Streaming from SocketCAN interface: %v\n", *ifName)
		count, err = streamSocketCAN(ctx, *ifName)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "# msgs seen: %v\n", count)
}

func streamSocketCAN(ctx context.Context, ifName string) (uint64, error) {
	device := socketcan.NewDevice(ifName)
	// stream until interrupted, a quiet bus with sporadic traffic is not an error
	device.SetReceiveDataTimeout(0)
	if err := device.Initialize(); err != nil {
		return 0, err
	}
	defer device.Close()

	count := uint64(0)
	for {
		frame, err := device.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return count, nil
			}
			return count, err
		}
		fmt.Println(candump.MarshalFrame(frame))
		count++
	}
}

func streamSerial(ctx context.Context, device string, baudRate int) (uint64, error) {
	// no read timeout: reads block until the gateway sends a line, context is
	// checked between lines
	port, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baudRate,
	})
	if err != nil {
		return 0, err
	}
	defer port.Close()

	count := uint64(0)
	r := candump.NewReader(port)
	for {
		if ctx.Err() != nil {
			return count, nil
		}
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		var malformed *candump.MalformedLineError
		if errors.As(err, &malformed) {
			fmt.Fprintf(os.Stderr, "# skipping %v\n", malformed)
			continue
		}
		if err != nil {
			return count, err
		}
		// re-emit normalized so downstream tools always see well formed lines
		fmt.Println(candump.MarshalFrame(frame))
		count++
	}
}
