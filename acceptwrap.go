package lactoserv

import "net"

// wrappingListener applies admission and throughput control to each
// accepted connection ahead of handing it to the protocol wrangler:
// through an optional connection rate limiter, then an optional data rate
// limiter socket wrap.
type wrappingListener struct {
	net.Listener
	connLimiter ConnectionRateLimiter
	dataLimiter DataRateLimiter
}

func wrapListener(l net.Listener, connLimiter ConnectionRateLimiter, dataLimiter DataRateLimiter) net.Listener {
	if connLimiter == nil && dataLimiter == nil {
		return l
	}
	return &wrappingListener{Listener: l, connLimiter: connLimiter, dataLimiter: dataLimiter}
}

func (w *wrappingListener) Accept() (net.Conn, error) {
	for {
		conn, err := w.Listener.Accept()
		if err != nil {
			return nil, err
		}

		if w.connLimiter != nil && !w.connLimiter.Admit() {
			conn.Close()
			continue
		}

		if w.dataLimiter != nil {
			conn = w.dataLimiter.Wrap(conn)
		}

		return conn, nil
	}
}
