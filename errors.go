// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

import "errors"

var (
	// Invalid settings detected while building a model (link ends, bodies, bias sizes).
	ErrConfiguration = errors.New("configuration error")

	// Light-time iteration did not converge within the iteration cap.
	ErrNotConverged = errors.New("light time not converged")

	// Request that does not match the model it is applied to.
	ErrConsistency = errors.New("consistency error")
)
