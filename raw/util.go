package raw

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uintptr
}

// CheckPow2 returns PowerOfTwoError if the provided number is not a power
// of two. Zero passes, matching the C aligned-allocation convention of
// treating it as "no alignment requirement".
func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp[T Number](value T, alignment uint) T {
	return (value + T(alignment) - 1) & ^(T(alignment) - 1)
}

func AlignDown[T Number](value T, alignment uint) T {
	return value & ^(T(alignment) - 1)
}
