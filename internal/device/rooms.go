package device

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRoom is returned when a room name does not resolve to a
// configured device.
var ErrUnknownRoom = errors.New("unknown room")

// Rooms maps normalized room names to device identifiers.
type Rooms map[string]string

// NormalizeRoom trims, lowercases, and strips all whitespace from a
// room name, so "Living Room " and "livingroom" resolve identically.
func NormalizeRoom(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "")
}

// Resolve looks up the device id for a room name. Unrecognized names
// return an explicit error, never a sentinel value.
func (r Rooms) Resolve(name string) (string, error) {
	id, ok := r[NormalizeRoom(name)]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoom, name)
	}
	return id, nil
}

// Names returns the configured room names in no particular order.
func (r Rooms) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
