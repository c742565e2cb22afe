package ingest

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"FlowSight/internal/metrics"
	"FlowSight/internal/model"
	"FlowSight/internal/publish"
	"FlowSight/internal/sink"

	"github.com/calmh/ipfix"
	"github.com/sirupsen/logrus"
)

// Ingestor owns the UDP receive loop and runs every decoded data record
// through normalization, classification, identity resolution and the sinks.
// It is the sole writer of the MAC cache, canonical rows and counter
// increments, so the per-record pipeline needs no synchronization of its own.
type Ingestor struct {
	conn    *net.UDPConn
	session *ipfix.Session
	interp  *ipfix.Interpreter
	cache   *MACCache
	sink    *sink.Batcher
	metrics *metrics.Metrics
	pub     *publish.Publisher // optional, may be nil

	wg sync.WaitGroup
}

// New binds the ingestion socket and prepares the IPFIX template session.
func New(bindAddr string, cache *MACCache, batcher *sink.Batcher, m *metrics.Metrics, pub *publish.Publisher) (*Ingestor, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest address %q: %w", bindAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind ingest socket: %w", err)
	}

	session := ipfix.NewSession()
	return &Ingestor{
		conn:    conn,
		session: session,
		interp:  ipfix.NewInterpreter(session),
		cache:   cache,
		sink:    batcher,
		metrics: m,
		pub:     pub,
	}, nil
}

// Start launches the receive loop.
func (in *Ingestor) Start() {
	logrus.Infof("Ingesting IPFIX on %s", in.conn.LocalAddr())
	in.wg.Add(1)
	go in.run()
}

// Stop closes the ingestion socket and waits for the loop to drain.
func (in *Ingestor) Stop() {
	in.conn.Close()
	in.wg.Wait()
}

func (in *Ingestor) run() {
	defer in.wg.Done()

	buf := make([]byte, 65535)
	var fields []ipfix.InterpretedField

	for {
		n, _, err := in.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logrus.Warnf("IPFIX receive: %v", err)
			continue
		}

		msg, err := in.session.ParseBuffer(buf[:n])
		if err != nil {
			// A datagram that does not decode as IPFIX is a protocol
			// violation by the exporter, not a reason to stop ingesting.
			in.metrics.DropRecord()
			logrus.Warnf("Discarding undecodable datagram (%d bytes): %v", n, err)
			continue
		}

		for _, rec := range msg.DataRecords {
			fields = in.interp.InterpretInto(rec, fields[:cap(fields)])
			in.processRecord(fields)
		}
	}
}

// processRecord handles one interpreted data record. A record missing a
// required element is counted and skipped; ingestion never halts over a
// single malformed record.
func (in *Ingestor) processRecord(fields []ipfix.InterpretedField) {
	obs, err := Normalize(Fields(fields))
	if err != nil {
		in.metrics.DropRecord()
		logrus.Warnf("Dropping flow record: %v", err)
		return
	}

	roles := Classify(obs)
	mac := in.cache.Resolve(roles.ClientAddr, roles.IsDownload, obs.SrcMAC)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		arrow := "->"
		if roles.IsDownload {
			arrow = "<-"
		}
		logrus.Debugf("%s | %s:%d %s %s:%d : [0x%02x] %d packets, %d bytes",
			mac, roles.ClientAddr, roles.ClientPort, arrow, roles.ServerAddr, roles.ServerPort,
			obs.Protocol, obs.Packets, obs.Bytes)
	}

	// Upload traffic is already counted as a download at the remote peer, so
	// only downloads feed the per-MAC byte counters.
	if roles.IsDownload {
		in.metrics.AddBytes(mac, obs.Bytes)
	}

	row := model.NewCanonicalRow(mac, roles.ClientAddr, roles.ClientPort,
		roles.ServerAddr, roles.ServerPort, obs.Protocol, obs.Packets, obs.Bytes, roles.IsDownload)
	in.sink.Write(row)

	if in.pub != nil {
		if err := in.pub.Publish(row); err != nil {
			logrus.Warnf("Failed to publish row: %v", err)
		}
	}
}
