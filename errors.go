package mallocator

import "errors"

// Sentinel errors distinguishing the invalid-argument and
// resource-exhaustion cases spec.md §7 both specify as "return null".
// Alloc/Zalloc/Realloc still return a nil pointer in every one of
// these cases, matching the C contract for a caller that only checks
// the pointer; callers that want to tell misuse from exhaustion can
// inspect the accompanying error with errors.Is.
var (
	// ErrInvalidSize is returned for a size that would overflow once
	// aligned and combined with block metadata. A zero size is not an
	// error: Alloc(0) and Zalloc(0, n) return (nil, nil), per spec.md §7.
	ErrInvalidSize = errors.New("mallocator: invalid size")

	// ErrOverflow is returned when zalloc's nmemb*size multiplication
	// overflows, independent of the individual arguments' validity.
	ErrOverflow = errors.New("mallocator: size computation overflow")

	// ErrOutOfMemory is returned when the break or mmap service
	// refuses a request.
	ErrOutOfMemory = errors.New("mallocator: out of memory")

	// ErrInvalidPointer is returned by Realloc when given a pointer
	// that was never allocated by this Allocator, or one that has
	// already been freed. Free tolerates both cases silently (spec.md
	// §7); Realloc cannot, since it must report the failure somehow.
	ErrInvalidPointer = errors.New("mallocator: invalid or already-freed pointer")

	// errCorrupt is wrapped into the panic value raised by the
	// integrity checker; it is not returned from any public method; a
	// corrupt heap cannot be reported through a normal error return
	// because the call that discovers it may not be the call that
	// caused it.
	errCorrupt = errors.New("mallocator: heap corruption detected")
)
