// Package sensor defines the fingerprint module collaborator and its
// implementations. Image matching happens inside the module; this side only
// drives the command sequence and reads back result codes.
package sensor

import (
	"context"
	"strconv"
)

// Code is a module confirmation code.
type Code uint8

const (
	OK Code = iota
	NoFinger
	ImageFail
	FeatureFail
	NotFound
	EnrollMismatch
	StoreFail
	DeleteFail
	CommError
)

var codeNames = [...]string{
	OK:             "ok",
	NoFinger:       "no_finger",
	ImageFail:      "image_fail",
	FeatureFail:    "feature_fail",
	NotFound:       "not_found",
	EnrollMismatch: "enroll_mismatch",
	StoreFail:      "store_fail",
	DeleteFail:     "delete_fail",
	CommError:      "comm_error",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "code(" + strconv.Itoa(int(c)) + ")"
}

// Slots for feature extraction during enrollment.
const (
	SlotFirst  = 1
	SlotSecond = 2
)

// Sensor is the fingerprint module command set.
type Sensor interface {
	// VerifyLink checks the serial link and module password.
	VerifyLink(ctx context.Context) bool
	// CaptureImage takes one image; NoFinger when nothing is on the glass.
	CaptureImage(ctx context.Context) Code
	// ExtractFeatures converts the last image into the given char buffer slot.
	ExtractFeatures(ctx context.Context, slot int) Code
	// Search looks up slot 1 in the enrolled template library.
	Search(ctx context.Context) (int, Code)
	// CreateTemplate fuses slots 1 and 2 into a model.
	CreateTemplate(ctx context.Context) Code
	StoreTemplate(ctx context.Context, id int) Code
	DeleteTemplate(ctx context.Context, id int) Code
}
