package interfaces

import "time"

// Clock abstracts time acquisition so builds and feeds can be tested with a
// fixed instant.
type Clock interface {
	Now() time.Time
}
