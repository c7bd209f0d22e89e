package services

import "github.com/taskboard/backend/internal/core/ports"

// Pager clamps incoming page requests to the configured sizes.
type Pager struct {
	DefaultSize int
	MaxSize     int
}

func DefaultPager() Pager {
	return Pager{DefaultSize: 10, MaxSize: 100}
}

// Clamp fills in the default size for zero or negative sizes, caps the size at
// MaxSize and floors negative page indexes at zero.
func (p Pager) Clamp(req ports.PageRequest) ports.PageRequest {
	def, max := p.DefaultSize, p.MaxSize
	if def <= 0 {
		def = 10
	}
	if max < def {
		max = def
	}
	if req.Size <= 0 {
		req.Size = def
	}
	if req.Size > max {
		req.Size = max
	}
	if req.Page < 0 {
		req.Page = 0
	}
	return req
}
