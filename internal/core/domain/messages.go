package domain

import (
	"errors"
	"fmt"
)

const repairHint = "If this group was duplicated, select the duplicated group " +
	"(or its text layer) and run the outline again to repair it. " +
	"Otherwise the reference was edited by hand: delete the group and outline the text layer again."

// kindMessages maps each taxonomy error to its user-facing explanation.
var kindMessages = []struct {
	kind error
	msg  string
}{
	{ErrUnexpectedTargetLayerType, "The selected layer has a type this tool does not recognise."},
	{ErrExpectedTextLayer, "The managed text layer is no longer a text layer, so it cannot be outlined. " +
		"Restore the text layer or remove the managed group."},
	{ErrParentlessChild, "The selected layer is tagged as part of a managed group but is not inside one. " +
		"Move it back into its group, or run the outline on a plain text layer instead."},
	{ErrChildlessRoot, "The managed group is empty. Add its text layer back or delete the group."},
	{ErrLayerWasNotManagedRoot, "The layer is not a managed outline group."},
	{ErrParentLayerWasNotManagedRoot, "The selected layer is tagged as managed, but its parent group is not " +
		"a managed outline group. Move it back into its managed group."},
	{ErrChildLayerWithoutRootReference, "The selected layer is missing its group reference. " +
		"Delete the outline group and outline the text layer again."},
	{ErrChildLayerDoesNotMatchRoot, "The selected layer references a different group than the one it is in. " + repairHint},
	{ErrTextLayerDoesNotMatchRoot, "The group's text layer references a different group. " + repairHint},
	{ErrOutlineLayerDoesNotMatchRoot, "The group's outline layer references a different group. " + repairHint},
	{ErrInvalidTagValue, "A layer tag could not be written because its value was not text."},
}

// UserMessage renders err as an actionable message for the user.
// Errors outside the taxonomy are reported as internal defects.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsSoft(err) {
		return "Nothing to outline: select a text layer or a managed outline group."
	}
	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return km.msg
		}
	}
	// Lookup and input failures come from the caller, not the protocol.
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return err.Error()
	}
	return fmt.Sprintf("Unexpected error, please report it with the details below.\n\n%v", err)
}

// UserError presents err with its user-facing message while keeping it
// available to errors.Is.
type UserError struct {
	Err error
}

// NewUserError wraps err, or returns nil when err is nil.
func NewUserError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{Err: err}
}

func (e *UserError) Error() string {
	return UserMessage(e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}
