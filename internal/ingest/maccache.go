package ingest

import (
	"container/list"
	"net"

	"FlowSight/internal/model"
)

// MACCache learns the hardware address behind each client IP from upload
// observations and answers lookups for download observations. It is owned
// exclusively by the ingestion goroutine, so it carries no locking.
type MACCache struct {
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // least recently updated at the front
}

type cacheEntry struct {
	ip  string
	mac string
}

// NewMACCache creates a cache holding at most maxEntries learned addresses.
// Zero or negative means unbounded.
func NewMACCache(maxEntries int) *MACCache {
	return &MACCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Resolve returns the hardware address attributed to clientAddr.
//
// For downloads the address must be inferred: the most recently learned MAC
// for that IP is returned, or the zero sentinel if nothing has been learned.
// Downloads never write to the cache.
//
// For uploads the exporter reports the true source MAC, so srcMAC is
// authoritative: it replaces any differing cached value and is returned.
func (c *MACCache) Resolve(clientAddr net.IP, isDownload bool, srcMAC string) string {
	key := clientAddr.String()

	if isDownload {
		if el, ok := c.entries[key]; ok {
			return el.Value.(*cacheEntry).mac
		}
		return model.EmptyMAC
	}

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*cacheEntry)
		if ent.mac != srcMAC {
			ent.mac = srcMAC
		}
		c.order.MoveToBack(el)
		return srcMAC
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{ip: key, mac: srcMAC})
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).ip)
	}
	return srcMAC
}

// Len reports the number of learned entries.
func (c *MACCache) Len() int {
	return len(c.entries)
}
