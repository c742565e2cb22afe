package model

import (
	"net"
	"time"
)

// EmptyMAC is the sentinel hardware address used when no MAC has been
// learned for a client IP yet.
const EmptyMAC = "00:00:00:00:00:00"

// FlowObservation is the protocol-agnostic view of one decoded flow record,
// before client/server roles have been assigned.
type FlowObservation struct {
	SrcAddr   net.IP
	DstAddr   net.IP
	SrcPort   uint16
	DstPort   uint16
	SrcMAC    string
	Protocol  uint8
	Packets   uint32
	Bytes     uint32
	Direction uint8
}

// CanonicalRow is the persistence-ready representation of one flow record.
// Addresses are stored as an (IPv4, IPv6) pair with the unused family held
// at that family's unspecified address. Rows are never mutated after
// construction.
type CanonicalRow struct {
	InsertionTime int64  `json:"insertionTime"`
	ClientMAC     uint64 `json:"clientMac"`
	ClientIPv4    net.IP `json:"clientIPv4"`
	ClientIPv6    net.IP `json:"clientIPv6"`
	ClientPort    uint16 `json:"clientPort"`
	ServerIPv4    net.IP `json:"serverIPv4"`
	ServerIPv6    net.IP `json:"serverIPv6"`
	ServerPort    uint16 `json:"serverPort"`
	Protocol      uint8  `json:"protocol"`
	Packets       uint32 `json:"packets"`
	Bytes         uint32 `json:"bytes"`
	IsDownload    bool   `json:"isDownload"`
}

// NewCanonicalRow builds a row from a classified observation. InsertionTime
// is the processing time, not the exporter's time.
func NewCanonicalRow(clientMAC string, clientAddr net.IP, clientPort uint16, serverAddr net.IP, serverPort uint16, protocol uint8, packets, bytes uint32, isDownload bool) CanonicalRow {
	clientV4, clientV6 := splitAddr(clientAddr)
	serverV4, serverV6 := splitAddr(serverAddr)

	return CanonicalRow{
		InsertionTime: time.Now().Unix(),
		ClientMAC:     MACToUint64(clientMAC),
		ClientIPv4:    clientV4,
		ClientIPv6:    clientV6,
		ClientPort:    clientPort,
		ServerIPv4:    serverV4,
		ServerIPv6:    serverV6,
		ServerPort:    serverPort,
		Protocol:      protocol,
		Packets:       packets,
		Bytes:         bytes,
		IsDownload:    isDownload,
	}
}

// splitAddr places an address into its family's slot, filling the other slot
// with that family's unspecified address.
func splitAddr(addr net.IP) (v4 net.IP, v6 net.IP) {
	if ip4 := addr.To4(); ip4 != nil {
		return ip4, net.IPv6unspecified
	}
	return net.IPv4zero.To4(), addr
}

// MACToUint64 packs a textual hardware address into its 48-bit integer form.
// Unparseable input maps to the zero sentinel.
func MACToUint64(mac string) uint64 {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return 0
	}
	var v uint64
	for _, b := range hw {
		v = v<<8 | uint64(b)
	}
	return v
}
