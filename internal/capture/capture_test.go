package capture

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/ooni/tcpprobe/internal/logx"
	"github.com/ooni/tcpprobe/internal/runtimex"
)

// newSegment serializes a TCP segment from 10.0.0.1:5555 to 10.0.0.2:9000.
func newSegment(tcp *layers.TCP, payload []byte) gopacket.Packet {
	ipv4 := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 2),
	}
	tcp.SrcPort = 5555
	tcp.DstPort = 9000
	tcp.Window = 65535
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	tcp.SetNetworkLayerForChecksum(ipv4)
	err := gopacket.SerializeLayers(buf, opts, ipv4, tcp, gopacket.Payload(payload))
	runtimex.PanicOnError(err, "gopacket.SerializeLayers failed")
	pkt := gopacket.NewPacket(buf.Bytes(), layers.LayerTypeIPv4, gopacket.Default)
	md := pkt.Metadata()
	md.Timestamp = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	md.CaptureLength = len(buf.Bytes())
	md.Length = len(buf.Bytes())
	return pkt
}

func TestFlags(t *testing.T) {
	cases := []struct {
		tcp    *layers.TCP
		expect string
	}{
		{&layers.TCP{SYN: true}, "SYN"},
		{&layers.TCP{SYN: true, ACK: true}, "SYN ACK"},
		{&layers.TCP{PSH: true, ACK: true}, "PSH ACK"},
		{&layers.TCP{FIN: true, ACK: true}, "FIN ACK"},
		{&layers.TCP{RST: true}, "RST"},
		{&layers.TCP{}, ""},
	}
	for _, tc := range cases {
		if got := Flags(tc.tcp); got != tc.expect {
			t.Fatal("unexpected flags", got, tc.expect)
		}
	}
}

func TestDescribeSegment(t *testing.T) {
	pkt := newSegment(&layers.TCP{Seq: 100, Ack: 200, PSH: true, ACK: true}, []byte("abcd"))

	t.Run("when the port is ours", func(t *testing.T) {
		c := &Capture{Port: 9000}
		channel, line, ok := c.DescribeSegment(pkt)
		if !ok {
			t.Fatal("expected a TCP segment")
		}
		if channel != "10.0.0.1" {
			t.Fatal("unexpected channel", channel)
		}
		if line != "5555->9000 [PSH ACK] seq=100 ack=200 len=4" {
			t.Fatal("unexpected line", line)
		}
	})

	t.Run("when the port is the peer's", func(t *testing.T) {
		c := &Capture{Port: 9000, RemoteOwnsPort: true}
		channel, _, ok := c.DescribeSegment(pkt)
		if !ok || channel != "10.0.0.2" {
			t.Fatal("unexpected channel", channel)
		}
	})

	t.Run("with a non TCP packet", func(t *testing.T) {
		c := &Capture{Port: 9000}
		udp := gopacket.NewPacket([]byte{0x00}, layers.LayerTypeUDP, gopacket.Default)
		if _, _, ok := c.DescribeSegment(udp); ok {
			t.Fatal("expected false")
		}
	})
}

func TestHandlePacket(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := pcapgo.NewWriter(buf)
	if err := writer.WriteFileHeader(snaplen, layers.LinkTypeRaw); err != nil {
		t.Fatal(err)
	}
	handler := memory.New()
	c := &Capture{
		Loggers: logx.NewFactory(handler),
		Port:    9000,
		Writer:  writer,
	}
	c.HandlePacket(newSegment(&layers.TCP{SYN: true, Seq: 1}, nil))

	reader := runtimex.Try1(pcapgo.NewReader(bytes.NewReader(buf.Bytes())))
	if _, _, err := reader.ReadPacketData(); err != nil {
		t.Fatal(err)
	}
	if len(handler.Entries) != 1 {
		t.Fatal("unexpected number of entries", len(handler.Entries))
	}
	e := handler.Entries[0]
	if e.Level != log.DebugLevel || logx.ChannelOf(e) != "10.0.0.1" {
		t.Fatal("unexpected entry", e)
	}
	if e.Message != "5555->9000 [SYN] seq=1 ack=0 len=0" {
		t.Fatal("unexpected message", e.Message)
	}
}

type failingWriter struct{}

func (failingWriter) WritePacket(ci gopacket.CaptureInfo, data []byte) error {
	return errors.New("mocked error")
}

func TestHandlePacketWriteFailure(t *testing.T) {
	handler := memory.New()
	c := &Capture{Loggers: logx.NewFactory(handler), Port: 9000, Writer: failingWriter{}}
	c.HandlePacket(newSegment(&layers.TCP{ACK: true}, nil))
	var levels []log.Level
	for _, e := range handler.Entries {
		levels = append(levels, e.Level)
	}
	if diff := cmp.Diff([]log.Level{log.WarnLevel, log.DebugLevel}, levels); diff != "" {
		t.Fatal(diff)
	}
}

func TestBPFFilter(t *testing.T) {
	if BPFFilter(9000) != "tcp port 9000" {
		t.Fatal("unexpected filter")
	}
}
