package order

import (
	"database/sql/driver"
	"errors"
)

type PackageSize string

const (
	PackageSize1Kg PackageSize = "1kg"
	PackageSize2Kg PackageSize = "2kg"
)

var ErrInvalidPackageSize = errors.New("invalid package size")

func (p PackageSize) String() string {
	return string(p)
}

func (p PackageSize) Value() (driver.Value, error) {
	return p.String(), nil
}

// WeightKg returns the weight of a single package in kilograms.
func (p PackageSize) WeightKg() int {
	if p == PackageSize2Kg {
		return 2
	}

	return 1
}

func ParsePackageSize(s string) (PackageSize, error) {
	switch PackageSize(s) {
	case PackageSize1Kg, PackageSize2Kg:
		return PackageSize(s), nil
	default:
		return "", ErrInvalidPackageSize
	}
}
