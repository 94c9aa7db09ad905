package driver

import (
	"fmt"
	"net"
	"sync"

	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// ArtDmx packet layout constants (Art-Net 4 specification).
const (
	artNetPort     = 6454
	opDmx          = 0x5000 // ArtDmx opcode, little-endian on the wire
	protocolVer    = 14
	artDmxHeader   = 18 // bytes before channel data
	maxSequenceNum = 255
)

// artNetID is the fixed packet preamble, including the terminating NUL.
var artNetID = []byte("Art-Net\x00")

// ArtNet drives a lighting rig by transmitting ArtDmx frames over UDP.
//
// Opening the socket is the startup gate for the whole controller: if the
// target address cannot be resolved or the socket cannot be created, the
// process must not start. After that, transmission is best-effort — a lost
// frame is corrected by the next one.
type ArtNet struct {
	conn     net.PacketConn
	target   net.Addr
	universe int
	engine   *engine
	logger   *logging.Logger

	seqMu sync.Mutex
	seq   byte
}

// OpenArtNet opens the UDP socket and starts the fade engine.
func OpenArtNet(cfg config.DMXConfig, logger *logging.Logger) (*ArtNet, error) {
	target, err := net.ResolveUDPAddr("udp4", cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("resolving art-net target %q: %w", cfg.Target, err)
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("opening art-net socket: %w", err)
	}

	a := &ArtNet{
		conn:     conn,
		target:   target,
		universe: cfg.Universe,
		logger:   logger.With("component", "artnet"),
	}
	a.engine = newEngine(cfg.FrameRate, a.sendFrame)
	a.engine.start()

	a.logger.Info("art-net output open",
		"target", cfg.Target,
		"universe", cfg.Universe,
		"frame_rate", cfg.FrameRate,
	)
	return a, nil
}

// ApplyFade hands one fade to the interpolation engine.
func (a *ArtNet) ApplyFade(fade dmx.Fade) error {
	return a.engine.applyFade(fade)
}

// ReplaceState swaps the full output universe and transmits it.
func (a *ArtNet) ReplaceState(universe *dmx.Universe) {
	a.engine.replaceState(universe)
}

// Universe returns a copy of the state currently on the wire.
func (a *ArtNet) Universe() *dmx.Universe {
	return a.engine.snapshot()
}

// Close stops the fade engine and releases the socket.
func (a *ArtNet) Close() error {
	a.engine.close()
	if err := a.conn.Close(); err != nil {
		return fmt.Errorf("closing art-net socket: %w", err)
	}
	return nil
}

// sendFrame transmits one ArtDmx packet carrying the full universe.
// Transmit failures are logged and dropped; the next frame supersedes.
func (a *ArtNet) sendFrame(data []byte) {
	packet := a.buildPacket(data)
	if _, err := a.conn.WriteTo(packet, a.target); err != nil {
		a.logger.Warn("art-net frame transmit failed", "error", err)
	}
}

// buildPacket frames channel data as an ArtDmx packet.
func (a *ArtNet) buildPacket(data []byte) []byte {
	a.seqMu.Lock()
	a.seq++
	if a.seq == 0 {
		a.seq = 1 // sequence 0 means "disabled" in the protocol
	}
	seq := a.seq
	a.seqMu.Unlock()

	packet := make([]byte, artDmxHeader+len(data))
	copy(packet, artNetID)
	packet[8] = byte(opDmx & 0xff)
	packet[9] = byte(opDmx >> 8)
	packet[10] = 0 // ProtVerHi
	packet[11] = protocolVer
	packet[12] = seq
	packet[13] = 0 // Physical
	packet[14] = byte(a.universe & 0xff)
	packet[15] = byte(a.universe >> 8)
	packet[16] = byte(len(data) >> 8)
	packet[17] = byte(len(data) & 0xff)
	copy(packet[artDmxHeader:], data)
	return packet
}
