package embedder

import "errors"

// ErrNoFace is returned when an enrollment photo contains no detectable face.
var ErrNoFace = errors.New("no face detected in the image")
