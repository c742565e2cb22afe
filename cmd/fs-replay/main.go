// fs-replay feeds a running collector from a pcap capture: every UDP payload
// in the file is sent as one datagram to the target address. Useful for
// exercising a collector against recorded exporter traffic offline.
package main

import (
	"flag"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/sirupsen/logrus"
)

func main() {
	file := flag.String("file", "", "pcap file to replay (required)")
	target := flag.String("target", "127.0.0.1:4739", "collector address to send datagrams to")
	delay := flag.Duration("delay", 0, "pause between datagrams")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logrus.Fatalf("Failed to open capture: %v", err)
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		logrus.Fatalf("Failed to read pcap header: %v", err)
	}

	conn, err := net.Dial("udp", *target)
	if err != nil {
		logrus.Fatalf("Failed to dial %s: %v", *target, err)
	}
	defer conn.Close()

	sent := 0
	for {
		data, _, err := reader.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.Fatalf("Failed to read packet: %v", err)
		}

		packet := gopacket.NewPacket(data, layers.LinkTypeEthernet, gopacket.Default)
		l := packet.Layer(layers.LayerTypeUDP)
		if l == nil {
			continue
		}
		payload := l.(*layers.UDP).Payload
		if len(payload) == 0 {
			continue
		}

		if _, err := conn.Write(payload); err != nil {
			logrus.Fatalf("Failed to send datagram: %v", err)
		}
		sent++

		if *delay > 0 {
			time.Sleep(*delay)
		}
	}

	logrus.Infof("Replayed %d datagrams to %s", sent, *target)
}
