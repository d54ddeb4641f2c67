package lactoserv

// DispatchInfo is the (base, extra) pair threaded through routers
// base is the path already consumed by enclosing
// routers, extra is the remainder still to match. Both are PathKeys so a
// router can rebind either half as it descends.
type DispatchInfo struct {
	Base  PathKey
	Extra PathKey
}

// NewDispatchInfo builds the initial dispatch info for an endpoint's
// top-level handler call: base is empty, extra is the full request path.
func NewDispatchInfo(extra PathKey) DispatchInfo {
	return DispatchInfo{
		Base:  NewPathKey(nil, true),
		Extra: extra,
	}
}

// Rebind returns a copy of d with base extended by the matched prefix and
// extra replaced by the remainder, as a router descends one level
// and extending it without losing the already-consumed prefix.
func (d DispatchInfo) Rebind(matchedPrefix []string, remainder []string) DispatchInfo {
	return DispatchInfo{
		Base:  d.Base.Append(matchedPrefix, true),
		Extra: NewPathKey(remainder, d.Extra.Wildcard()),
	}
}
