package ingest

import (
	"fmt"
	"net"

	"FlowSight/internal/model"
)

// Normalize extracts the required elements from a field map into a
// FlowObservation. MAC and address elements fall back to their alternate
// identifiers when the primary is absent. A required element missing under
// all known identifiers yields an error; the record should then be skipped,
// never treated as fatal.
func Normalize(m FieldMap) (*model.FlowObservation, error) {
	srcMAC, err := m.mac(fieldSourceMacAddress, fieldPostSourceMacAddress)
	if err != nil {
		return nil, err
	}

	srcAddr, err := m.addr(fieldSourceIPv4Address, fieldSourceIPv6Address)
	if err != nil {
		return nil, err
	}

	dstAddr, err := m.addr(fieldDestinationIPv4Address, fieldDestinationIPv6Address)
	if err != nil {
		return nil, err
	}

	srcPort, err := m.unsigned(fieldSourceTransportPort)
	if err != nil {
		return nil, err
	}

	dstPort, err := m.unsigned(fieldDestinationTransportPort)
	if err != nil {
		return nil, err
	}

	protocol, err := m.unsigned(fieldProtocolIdentifier)
	if err != nil {
		return nil, err
	}

	packets, err := m.unsigned(fieldPacketDeltaCount)
	if err != nil {
		return nil, err
	}

	bytes, err := m.unsigned(fieldOctetDeltaCount)
	if err != nil {
		return nil, err
	}

	direction, err := m.unsigned(fieldFlowDirection)
	if err != nil {
		return nil, err
	}

	return &model.FlowObservation{
		SrcAddr:   srcAddr,
		DstAddr:   dstAddr,
		SrcPort:   uint16(srcPort),
		DstPort:   uint16(dstPort),
		SrcMAC:    srcMAC,
		Protocol:  uint8(protocol),
		Packets:   uint32(packets),
		Bytes:     uint32(bytes),
		Direction: uint8(direction),
	}, nil
}

// lookup fetches an element by its primary identifier, then by its fallback.
func (m FieldMap) lookup(primary, fallback uint16) (interface{}, bool) {
	if v, ok := m[primary]; ok {
		return v, true
	}
	v, ok := m[fallback]
	return v, ok
}

// mac returns an element as a textual hardware address.
func (m FieldMap) mac(primary, fallback uint16) (string, error) {
	v, ok := m.lookup(primary, fallback)
	if !ok {
		return "", fmt.Errorf("missing element %d (fallback %d)", primary, fallback)
	}
	switch hw := v.(type) {
	case net.HardwareAddr:
		return hw.String(), nil
	case string:
		return hw, nil
	default:
		return "", fmt.Errorf("element %d is not a hardware address: %T", primary, v)
	}
}

// addr returns an element as an IP address.
func (m FieldMap) addr(primary, fallback uint16) (net.IP, error) {
	v, ok := m.lookup(primary, fallback)
	if !ok {
		return nil, fmt.Errorf("missing element %d (fallback %d)", primary, fallback)
	}
	ip, ok := v.(net.IP)
	if !ok {
		return nil, fmt.Errorf("element %d is not an IP address: %T", primary, v)
	}
	return ip, nil
}

// unsigned returns an element as a fixed-width unsigned integer, whichever
// width the interpreter produced.
func (m FieldMap) unsigned(id uint16) (uint64, error) {
	v, ok := m[id]
	if !ok {
		return 0, fmt.Errorf("missing element %d", id)
	}
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("element %d is not an integer: %T", id, v)
	}
}
