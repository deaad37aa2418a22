// Package capture records the probe's TCP segments using libpcap.
//
// Each segment is written into a pcap file and logged, at debug level,
// on the channel of the peer, so the transcript of a peer shows the
// segments next to the reads and writes.
package capture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"
	"github.com/ooni/tcpprobe/internal/model"
)

// snaplen is the maximum number of bytes we capture per packet.
const snaplen = 65535

// readTimeout allows the capture loop to notice we're stopping.
const readTimeout = 250 * time.Millisecond

// Config contains the capture settings.
type Config struct {
	// Interface is the interface to capture from (e.g., "any").
	Interface string

	// OutputFile is the pcap file to create.
	OutputFile string

	// Port is the TCP port to capture.
	Port uint16

	// RemoteOwnsPort is true when Port belongs to the peer, as it
	// happens for the client, and false when Port is ours.
	RemoteOwnsPort bool
}

// PacketWriter writes packets into a capture file.
type PacketWriter interface {
	WritePacket(ci gopacket.CaptureInfo, data []byte) error
}

var _ PacketWriter = &pcapgo.Writer{}

// Capture is a running capture. Construct using [Start].
type Capture struct {
	// Loggers creates the log channels.
	Loggers model.LoggerFactory

	// Port is the captured port.
	Port uint16

	// RemoteOwnsPort is like Config.RemoteOwnsPort.
	RemoteOwnsPort bool

	// Writer writes the packets.
	Writer PacketWriter

	cancel context.CancelFunc
	file   *os.File
	wg     sync.WaitGroup
}

// Start starts capturing packets in the background. Use [Capture.Stop]
// to stop capturing and close the output file.
func Start(ctx context.Context, config *Config, loggers model.LoggerFactory) (*Capture, error) {
	handle, err := pcap.OpenLive(config.Interface, snaplen, false, readTimeout)
	if err != nil {
		return nil, fmt.Errorf("capture: open pcap: %w", err)
	}
	if err := handle.SetBPFFilter(BPFFilter(config.Port)); err != nil {
		handle.Close()
		return nil, fmt.Errorf("capture: bpf filter: %w", err)
	}
	file, err := os.Create(config.OutputFile)
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("capture: %w", err)
	}
	writer := pcapgo.NewWriter(file)
	if err := writer.WriteFileHeader(snaplen, handle.LinkType()); err != nil {
		handle.Close()
		file.Close()
		return nil, fmt.Errorf("capture: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Capture{
		Loggers:        model.ValidLoggerFactoryOrDefault(loggers),
		Port:           config.Port,
		RemoteOwnsPort: config.RemoteOwnsPort,
		Writer:         writer,
		cancel:         cancel,
		file:           file,
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer handle.Close()
		src := gopacket.NewPacketSource(handle, handle.LinkType())
		for {
			select {
			case <-ctx.Done():
				return
			case pkt, ok := <-src.Packets():
				if !ok {
					return
				}
				c.HandlePacket(pkt)
			}
		}
	}()
	return c, nil
}

// Stop stops capturing and closes the output file.
func (c *Capture) Stop() error {
	c.cancel()
	c.wg.Wait()
	return c.file.Close()
}

// BPFFilter returns the filter selecting the segments of port.
func BPFFilter(port uint16) string {
	return fmt.Sprintf("tcp port %d", port)
}

// HandlePacket writes pkt and logs it when it is a TCP segment.
func (c *Capture) HandlePacket(pkt gopacket.Packet) {
	if err := c.Writer.WritePacket(pkt.Metadata().CaptureInfo, pkt.Data()); err != nil {
		c.Loggers.NewLogger("capture").Warnf("capture: cannot write packet: %s", err.Error())
	}
	if channel, line, ok := c.DescribeSegment(pkt); ok {
		c.Loggers.NewLogger(channel).Debug(line)
	}
}

// DescribeSegment returns the channel of the peer and the log line of
// a TCP segment. The boolean is false when pkt is not a TCP segment.
func (c *Capture) DescribeSegment(pkt gopacket.Packet) (string, string, bool) {
	tcpLayer := pkt.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return "", "", false
	}
	tcp := tcpLayer.(*layers.TCP)
	var src, dst string
	switch ip := pkt.NetworkLayer().(type) {
	case *layers.IPv4:
		src, dst = ip.SrcIP.String(), ip.DstIP.String()
	case *layers.IPv6:
		src, dst = ip.SrcIP.String(), ip.DstIP.String()
	default:
		return "", "", false
	}
	// the peer is the side owning the port when the port is remote
	// and the other side when the port is ours
	srcIsPeer := (uint16(tcp.SrcPort) == c.Port) == c.RemoteOwnsPort
	channel := dst
	if srcIsPeer {
		channel = src
	}
	line := fmt.Sprintf("%d->%d [%s] seq=%d ack=%d len=%d", tcp.SrcPort, tcp.DstPort,
		Flags(tcp), tcp.Seq, tcp.Ack, len(tcp.Payload))
	return channel, line, true
}

// Flags returns the space separated names of the flags set in tcp.
func Flags(tcp *layers.TCP) string {
	var flags []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{tcp.FIN, "FIN"},
		{tcp.SYN, "SYN"},
		{tcp.RST, "RST"},
		{tcp.PSH, "PSH"},
		{tcp.ACK, "ACK"},
		{tcp.URG, "URG"},
		{tcp.ECE, "ECE"},
		{tcp.CWR, "CWR"},
		{tcp.NS, "NS"},
	} {
		if f.set {
			flags = append(flags, f.name)
		}
	}
	return strings.Join(flags, " ")
}
