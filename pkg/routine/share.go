package routine

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidShare is returned when a share code cannot be decoded.
var ErrInvalidShare = errors.New("invalid shared routine")

// EncodeShare renders r as a portable share code.
func EncodeShare(r Routine) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding routine: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(url.PathEscape(string(data)))), nil
}

// DecodeShare parses a share code into a new routine. The imported routine
// gets a fresh id so it never overwrites an existing one.
func DecodeShare(code string) (Routine, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return Routine{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	text, err := url.PathUnescape(string(raw))
	if err != nil {
		return Routine{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	var r Routine
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Routine{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	if len(r.Blocks) == 0 {
		return Routine{}, fmt.Errorf("%w: no blocks", ErrInvalidShare)
	}

	r.ID = "shared-" + uuid.NewString()
	r.Name = strings.TrimSpace(r.Name + " (shared)")
	SortBlocks(r.Blocks)
	if err := r.Validate(); err != nil {
		return Routine{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	return r, nil
}
