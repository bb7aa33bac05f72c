package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when the path does not carry a usable ID.
var ErrInvalidID = errors.New("invalid id")

// ExtractID parses the numeric ID that follows prefix in path.
// IDs are positive int64 values; anything else, including a zero ID or
// extra path segments after the number, yields ErrInvalidID.
func ExtractID(path, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(path, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
