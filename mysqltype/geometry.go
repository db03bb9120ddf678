package mysqltype

import (
	"encoding/binary"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// MySQL stores geometry values as a 4-byte little-endian SRID followed by
// the WKB encoding of the geometry. Geometry columns map to binary in Arrow;
// these helpers let consumers decode the stored bytes into geometries.

// sridSize is the length of the SRID prefix in a MySQL geometry value.
const sridSize = 4

// DecodeGeometry decodes a MySQL internal geometry value.
// Returns the geometry and its SRID.
func DecodeGeometry(data []byte) (orb.Geometry, uint32, error) {
	if len(data) < sridSize {
		return nil, 0, fmt.Errorf("geometry value too short: %d bytes", len(data))
	}
	srid := binary.LittleEndian.Uint32(data[:sridSize])
	geom, err := wkb.Unmarshal(data[sridSize:])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode WKB geometry: %w", err)
	}
	return geom, srid, nil
}

// EncodeGeometry encodes a geometry into the MySQL internal format.
func EncodeGeometry(geom orb.Geometry, srid uint32) ([]byte, error) {
	raw, err := wkb.Marshal(geom)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WKB geometry: %w", err)
	}
	buf := make([]byte, sridSize, sridSize+len(raw))
	binary.LittleEndian.PutUint32(buf, srid)
	return append(buf, raw...), nil
}
