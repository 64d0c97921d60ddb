package speedy

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil interface.
	ErrNilIO = errors.New("speedy: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrTruncatedData indicates that the data source ended before all expected
	// bytes were read, or that an input buffer is shorter than the decoded
	// type's minimum size.
	ErrTruncatedData = errors.New("speedy: truncated data")

	// ErrInvalidUTF8 indicates that a decoded string payload is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("speedy: string payload is not valid UTF-8")

	// ErrUnknownDiscriminant indicates that a decoded enum discriminant does not
	// belong to the variant set.
	ErrUnknownDiscriminant = errors.New("speedy: unknown enum discriminant")

	// ErrUnknownVariant indicates an attempt to encode a value whose concrete
	// type is not part of the enum's variant set.
	ErrUnknownVariant = errors.New("speedy: value is not a registered enum variant")

	// ErrDuplicateDiscriminant indicates that two variants of one enum resolved
	// to the same discriminant value.
	ErrDuplicateDiscriminant = errors.New("speedy: duplicate enum discriminant")

	// ErrDiscriminantOverflow indicates an implicit variant whose sequential
	// discriminant would exceed the u32 range.
	ErrDiscriminantOverflow = errors.New("speedy: enum discriminant exceeds u32 range")

	// ErrDuplicateVariant indicates that one concrete type was declared twice
	// in a single enum's variant set.
	ErrDuplicateVariant = errors.New("speedy: variant type declared twice")

	// ErrLengthOverflow indicates a variable-length payload with more elements
	// than a u32 length prefix can represent.
	ErrLengthOverflow = errors.New("speedy: payload length exceeds u32 range")

	// ErrUnsupportedType indicates a type the layout contract does not cover
	// (maps, channels, funcs, pointers, unregistered interfaces).
	ErrUnsupportedType = errors.New("speedy: unsupported type")

	// ErrNotAPointer indicates that a decode destination was not a non-nil pointer.
	ErrNotAPointer = errors.New("speedy: decode destination must be a non-nil pointer")
)
