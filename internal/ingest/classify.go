package ingest

import (
	"net"

	"FlowSight/internal/model"
)

// Roles names the two endpoints of an observation relative to the inferred
// client, together with the traffic direction.
type Roles struct {
	ClientAddr net.IP
	ClientPort uint16
	ServerAddr net.IP
	ServerPort uint16
	IsDownload bool
}

// Classify assigns client and server roles. The exporter reports direction
// relative to its own observation point: direction 0 is ingress, so the
// destination side is the client receiving a download. Any other direction
// value means the source side is the client uploading.
func Classify(obs *model.FlowObservation) Roles {
	if obs.Direction == 0 {
		return Roles{
			ClientAddr: obs.DstAddr,
			ClientPort: obs.DstPort,
			ServerAddr: obs.SrcAddr,
			ServerPort: obs.SrcPort,
			IsDownload: true,
		}
	}
	return Roles{
		ClientAddr: obs.SrcAddr,
		ClientPort: obs.SrcPort,
		ServerAddr: obs.DstAddr,
		ServerPort: obs.DstPort,
		IsDownload: false,
	}
}
