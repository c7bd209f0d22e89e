package db

import (
	"errors"

	"github.com/taskboard/backend/internal/core/ports"
	"gorm.io/gorm"
)

// translate maps gorm's not-found error onto the port sentinel so services
// never import gorm.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrRecordNotFound
	}
	return err
}

func likePattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
