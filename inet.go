package pgbin

import (
	"fmt"
	"net/netip"
)

// PostgreSQL address family constants from src/include/utils/inet.h. IPv6 is
// always AF_INET + 1 regardless of the platform's own AF_INET6.
const (
	pgAFInet  = 2
	pgAFInet6 = 3
)

// InetCodec implements the inet wire format: address family, prefix length
// in bits, an is_cidr flag the server ignores, the address byte count, then
// the address bytes.
type InetCodec struct{}

func (InetCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	var prefix netip.Prefix
	switch value := value.(type) {
	case netip.Prefix:
		prefix = value
	case netip.Addr:
		prefix = netip.PrefixFrom(value, value.BitLen())
	case string:
		p, err := netip.ParsePrefix(value)
		if err != nil {
			a, err := netip.ParseAddr(value)
			if err != nil {
				return nil, fmt.Errorf("cannot parse %q as inet", value)
			}
			p = netip.PrefixFrom(a, a.BitLen())
		}
		prefix = p
	default:
		return nil, fmt.Errorf("cannot convert %v to inet", value)
	}

	if !prefix.IsValid() {
		return nil, fmt.Errorf("invalid inet prefix")
	}

	var family byte
	if prefix.Addr().Is4() {
		family = pgAFInet
	} else {
		family = pgAFInet6
	}

	buf = append(buf, family)
	buf = append(buf, byte(prefix.Bits()))
	// is_cidr is ignored on the server
	buf = append(buf, 0)

	addr := prefix.Addr().AsSlice()
	buf = append(buf, byte(len(addr)))
	return append(buf, addr...), nil
}

func (InetCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 8 && len(src) != 20 {
		return nil, &LengthError{TypeName: "inet", Expected: -1, Actual: len(src)}
	}

	bits := int(src[1])
	addrLen := int(src[3])
	if addrLen != len(src)-4 {
		return nil, &LengthError{TypeName: "inet", Expected: addrLen + 4, Actual: len(src)}
	}

	addr, ok := netip.AddrFromSlice(src[4:])
	if !ok {
		return nil, fmt.Errorf("invalid inet address length %d", addrLen)
	}

	prefix := netip.PrefixFrom(addr, bits)
	if !prefix.IsValid() {
		return nil, fmt.Errorf("invalid inet prefix length %d", bits)
	}
	return prefix, nil
}
