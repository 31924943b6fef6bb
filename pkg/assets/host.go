package assets

import (
	"hash/crc32"
	"strconv"
	"strings"

	"github.com/vango-dev/assetpath/pkg/uripath"
)

// hostShards is the size of the numbered host pool a "%d" pattern expands to.
const hostShards = 4

// hostSelector is the last pipeline stage. It only ever sets scheme and
// host.
type hostSelector struct {
	host Value

	// protocol is the effective protocol, explicit when the call set one.
	protocol         string
	explicitProtocol bool
}

func (h hostSelector) rewriteHostProtocol(u *uripath.URI) {
	if !h.host.Active() {
		return
	}

	host := SelectHost(h.host, u.PathQuery())
	if host == "" {
		return
	}

	scheme := schemeFor(h.protocol)
	if i := strings.Index(host, "://"); i >= 0 {
		if !h.explicitProtocol {
			scheme = host[:i]
		}
		host = host[i+3:]
	} else if strings.HasPrefix(host, "//") {
		host = host[2:]
	}

	u.Host = strings.TrimRight(host, "/")
	u.Scheme = scheme
}

// SelectHost computes the host for an asset whose path and query are key.
// Literal hosts containing "%d" are sharded deterministically over four
// numbered hosts using the CRC32 of key.
func SelectHost(host Value, key string) string {
	if host.IsComputed() {
		return host.Resolve(key)
	}
	h := host.Resolve(key)
	if strings.Contains(h, "%d") {
		return strings.Replace(h, "%d", strconv.Itoa(ShardIndex(key)), 1)
	}
	return h
}

// ShardIndex returns the host shard for key, in [0, 4).
func ShardIndex(key string) int {
	return int(crc32.ChecksumIEEE([]byte(key)) % hostShards)
}

// schemeFor converts a protocol setting into a URI scheme. The relative
// protocol and an empty protocol produce no scheme.
func schemeFor(protocol string) string {
	if protocol == "" || protocol == RelativeProtocol {
		return ""
	}
	return strings.TrimSuffix(strings.TrimSuffix(protocol, "//"), ":")
}
