package ingest

import (
	"github.com/calmh/ipfix"
)

// IANA information element identifiers the collector extracts from each
// data record. Post-NAT variants serve as fallbacks for their base element.
const (
	fieldOctetDeltaCount          uint16 = 1
	fieldPacketDeltaCount         uint16 = 2
	fieldProtocolIdentifier       uint16 = 4
	fieldSourceTransportPort      uint16 = 7
	fieldSourceIPv4Address        uint16 = 8
	fieldDestinationTransportPort uint16 = 11
	fieldDestinationIPv4Address   uint16 = 12
	fieldSourceIPv6Address        uint16 = 27
	fieldDestinationIPv6Address   uint16 = 28
	fieldSourceMacAddress         uint16 = 56
	fieldFlowDirection            uint16 = 61
	fieldPostSourceMacAddress     uint16 = 81
)

// FieldMap indexes one data record's interpreted fields by information
// element identifier.
type FieldMap map[uint16]interface{}

// Fields builds a FieldMap from an interpreted data record. When the same
// element appears more than once within a record the last value wins.
// Enterprise-specific elements live in a separate identifier space and are
// ignored.
func Fields(fields []ipfix.InterpretedField) FieldMap {
	m := make(FieldMap, len(fields))
	for _, f := range fields {
		if f.EnterpriseID != 0 {
			continue
		}
		m[f.FieldID] = f.Value
	}
	return m
}
