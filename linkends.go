// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.13
//

package gotrack

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

// Role of a participant in an observation
type LinkEndType int

const (
	Transmitter LinkEndType = iota
	Reflector
	Receiver
	ObservedBody
)

func (t LinkEndType) String() string {
	switch t {
	case Transmitter:
		return "transmitter"
	case Reflector:
		return "reflector"
	case Receiver:
		return "receiver"
	case ObservedBody:
		return "observed_body"
	default:
		return "UNKNOWN!"
	}
}

func ParseLinkEndType(s string) (LinkEndType, error) {
	switch strings.ToLower(s) {
	case "transmitter":
		return Transmitter, nil
	case "reflector":
		return Reflector, nil
	case "receiver":
		return Receiver, nil
	case "observed_body":
		return ObservedBody, nil
	default:
		return 0, fmt.Errorf("unknown link end type %q", s)
	}
}

func (t LinkEndType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *LinkEndType) UnmarshalText(text []byte) error {
	v, err := ParseLinkEndType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Body, optionally with a station on it (empty: body centre)
type LinkEndID struct {
	Body    string
	Station string
}

func (id LinkEndID) String() string {
	if id.Station == "" {
		return id.Body
	}
	return id.Body + "/" + id.Station
}

// Assignment of link end roles to participants
type LinkEnds map[LinkEndType]LinkEndID

// Roles present, in ascending order
func (le LinkEnds) Types() []LinkEndType {
	types := make([]LinkEndType, 0, len(le))
	for t := range le {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Check that exactly the required roles are present
func (le LinkEnds) validate(required []LinkEndType) error {
	for _, t := range required {
		if _, ok := le[t]; !ok {
			return fmt.Errorf("%w: link end %s missing", ErrConfiguration, t)
		}
	}
	for t, id := range le {
		if !slices.Contains(required, t) {
			return fmt.Errorf("%w: unexpected link end %s (%s)", ErrConfiguration, t, id)
		}
		if id.Body == "" {
			return fmt.Errorf("%w: link end %s has no body", ErrConfiguration, t)
		}
	}
	return nil
}

func (le LinkEnds) String() string {
	s := []string{}
	for _, t := range le.Types() {
		s = append(s, fmt.Sprintf("%s=%s", t, le[t]))
	}
	return strings.Join(s, " ")
}
