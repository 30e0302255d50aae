package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")
)

// Target errors. ErrUnknownLayerType and ErrFoundRootWithoutText are soft:
// they mean "nothing to do" and are never shown to the user.
var (
	// ErrUnknownLayerType indicates the target is neither managed nor a text layer.
	ErrUnknownLayerType = errors.New("unknown layer type")

	// ErrUnexpectedTargetLayerType indicates the classifier produced a role
	// outside the recognised set.
	ErrUnexpectedTargetLayerType = errors.New("unexpected target layer type")

	// ErrExpectedTextLayer indicates a non-text layer was given to the renderer.
	ErrExpectedTextLayer = errors.New("expected a text layer")
)

// Structural errors.
var (
	// ErrParentlessChild indicates a managed child layer has no parent.
	ErrParentlessChild = errors.New("managed child layer has no parent")

	// ErrChildlessRoot indicates a managed root group has no children.
	ErrChildlessRoot = errors.New("managed root group has no children")

	// ErrFoundRootWithoutText indicates a managed root has no managed text child.
	ErrFoundRootWithoutText = errors.New("managed root group has no text layer")

	// ErrLayerWasNotManagedRoot indicates a layer expected to be a root is not one.
	ErrLayerWasNotManagedRoot = errors.New("layer is not a managed root group")

	// ErrParentLayerWasNotManagedRoot indicates a managed child sits under an unmanaged parent.
	ErrParentLayerWasNotManagedRoot = errors.New("parent layer is not a managed root group")
)

// Reference consistency errors.
var (
	// ErrChildLayerWithoutRootReference indicates a managed child lacks its root-id tag.
	ErrChildLayerWithoutRootReference = errors.New("managed child layer has no root reference")

	// ErrChildLayerDoesNotMatchRoot indicates a child's root-id does not name its parent.
	ErrChildLayerDoesNotMatchRoot = errors.New("managed child layer does not reference its parent")

	// ErrTextLayerDoesNotMatchRoot indicates the text child references another root.
	ErrTextLayerDoesNotMatchRoot = errors.New("managed text layer does not reference its root group")

	// ErrOutlineLayerDoesNotMatchRoot indicates the outline child references another root.
	ErrOutlineLayerDoesNotMatchRoot = errors.New("managed outline layer does not reference its root group")
)

// Tag errors.
var (
	// ErrInvalidTagValue indicates a non-string value was given to the tag store.
	ErrInvalidTagValue = errors.New("tag value must be a string")
)

// IsSoft reports whether err is a "nothing to do" outcome rather than a failure.
func IsSoft(err error) bool {
	return errors.Is(err, ErrUnknownLayerType) || errors.Is(err, ErrFoundRootWithoutText)
}
