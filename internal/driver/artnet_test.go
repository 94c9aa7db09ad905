package driver

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

func TestBuildPacket(t *testing.T) {
	a := &ArtNet{universe: 0x0102}

	data := make([]byte, dmx.ChannelCount)
	data[0] = 255
	packet := a.buildPacket(data)

	if len(packet) != artDmxHeader+dmx.ChannelCount {
		t.Fatalf("packet length = %d, want %d", len(packet), artDmxHeader+dmx.ChannelCount)
	}
	if !bytes.Equal(packet[:8], artNetID) {
		t.Errorf("preamble = %q", packet[:8])
	}
	if packet[8] != 0x00 || packet[9] != 0x50 {
		t.Errorf("opcode bytes = %#x %#x, want 0x00 0x50", packet[8], packet[9])
	}
	if packet[11] != protocolVer {
		t.Errorf("protocol version = %d, want %d", packet[11], protocolVer)
	}
	if packet[12] != 1 {
		t.Errorf("first sequence = %d, want 1", packet[12])
	}
	if packet[14] != 0x02 || packet[15] != 0x01 {
		t.Errorf("universe bytes = %#x %#x, want 0x02 0x01", packet[14], packet[15])
	}
	if packet[16] != 0x02 || packet[17] != 0x00 {
		t.Errorf("length bytes = %#x %#x, want 0x02 0x00", packet[16], packet[17])
	}
	if packet[artDmxHeader] != 255 {
		t.Errorf("channel 1 data = %d, want 255", packet[artDmxHeader])
	}
}

func TestBuildPacket_SequenceSkipsZero(t *testing.T) {
	a := &ArtNet{seq: maxSequenceNum}

	packet := a.buildPacket(nil)
	if packet[12] != 1 {
		t.Errorf("sequence after wrap = %d, want 1", packet[12])
	}
}

func TestArtNet_EndToEnd(t *testing.T) {
	// Stand in for the Art-Net node with a local UDP listener.
	node, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	defer node.Close()

	cfg := config.DMXConfig{
		Target:    node.LocalAddr().String(),
		Universe:  4,
		FrameRate: 40,
	}
	out, err := OpenArtNet(cfg, logging.Default())
	if err != nil {
		t.Fatalf("OpenArtNet() error = %v", err)
	}
	defer out.Close()

	if err := out.ApplyFade(dmx.Fade{Channel: 3, Value: 180}); err != nil {
		t.Fatalf("ApplyFade() error = %v", err)
	}

	if err := node.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("setting deadline: %v", err)
	}
	buf := make([]byte, 1024)
	n, _, err := node.ReadFrom(buf)
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}

	packet := buf[:n]
	if !bytes.HasPrefix(packet, artNetID) {
		t.Fatalf("received packet without Art-Net preamble")
	}
	if packet[14] != 4 {
		t.Errorf("universe = %d, want 4", packet[14])
	}
	if got := packet[artDmxHeader+2]; got != 180 {
		t.Errorf("channel 3 = %d, want 180", got)
	}
}

func TestOpenArtNet_BadTarget(t *testing.T) {
	cfg := config.DMXConfig{Target: "not-a-host-port", FrameRate: 40}
	if _, err := OpenArtNet(cfg, logging.Default()); err == nil {
		t.Error("OpenArtNet() expected error for malformed target")
	}
}
