// Package errdefs defines the pipeline's error taxonomy. Every stage failure
// is classified into one of these sentinels so the driver can report the
// failing stage and class; there is no retry, a failed stage aborts the run.
package errdefs

import (
	"errors"

	"github.com/rotisserie/eris"
)

var (
	// ErrDataLoad marks a missing file, sheet, column, or required value at
	// any loader boundary.
	ErrDataLoad = errors.New("data load error")

	// ErrGeometry marks a malformed or empty point/polygon geometry.
	ErrGeometry = errors.New("geometry error")

	// ErrJoinKey marks a join key that is present in one table but blank or
	// absent in the other where downstream logic requires it.
	ErrJoinKey = errors.New("join key error")

	// ErrTypeConversion marks a non-numeric value where a numeric
	// commuting-zone or FIPS id is required.
	ErrTypeConversion = errors.New("type conversion error")
)

// DataLoad wraps err as a data-load failure with a descriptive message.
func DataLoad(err error, msg string) error {
	return classify(ErrDataLoad, err, msg)
}

// DataLoadf creates a new data-load failure.
func DataLoadf(format string, args ...any) error {
	return eris.Wrap(ErrDataLoad, eris.Errorf(format, args...).Error())
}

// Geometry wraps err as a geometry failure.
func Geometry(err error, msg string) error {
	return classify(ErrGeometry, err, msg)
}

// Geometryf creates a new geometry failure.
func Geometryf(format string, args ...any) error {
	return eris.Wrap(ErrGeometry, eris.Errorf(format, args...).Error())
}

// JoinKeyf creates a new join-key failure.
func JoinKeyf(format string, args ...any) error {
	return eris.Wrap(ErrJoinKey, eris.Errorf(format, args...).Error())
}

// TypeConversion wraps err as a type-conversion failure.
func TypeConversion(err error, msg string) error {
	return classify(ErrTypeConversion, err, msg)
}

// TypeConversionf creates a new type-conversion failure.
func TypeConversionf(format string, args ...any) error {
	return eris.Wrap(ErrTypeConversion, eris.Errorf(format, args...).Error())
}

func classify(sentinel, err error, msg string) error {
	if err == nil {
		return eris.Wrap(sentinel, msg)
	}
	return eris.Wrap(sentinel, msg+": "+err.Error())
}
