package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDetectionMatrix(t *testing.T) {
	statuses := DecodeDetectionMatrix("D-CT", 4)

	require.Equal(t, []DetectionStatus{StatusDetected, StatusUndetected, StatusCrashed, StatusTimeout}, statuses)
}

func TestDecodeDetectionMatrix_ShortMatrixYieldsUnknown(t *testing.T) {
	statuses := DecodeDetectionMatrix("D", 3)

	require.Equal(t, []DetectionStatus{StatusDetected, StatusUnknown, StatusUnknown}, statuses)
}

func TestDecodeDetectionMatrix_LongMatrixIsTruncated(t *testing.T) {
	statuses := DecodeDetectionMatrix("DDDD", 2)

	require.Equal(t, []DetectionStatus{StatusDetected, StatusDetected}, statuses)
}

func TestDetectionStatusString(t *testing.T) {
	require.Equal(t, "detected", StatusDetected.String())
	require.Equal(t, "undetected", StatusUndetected.String())
	require.Equal(t, "crashed", StatusCrashed.String())
	require.Equal(t, "timeout", StatusTimeout.String())
	require.Equal(t, "", StatusUnknown.String())
}

func TestDetectionStatusFromRune_UnknownCharacter(t *testing.T) {
	require.Equal(t, StatusUnknown, DetectionStatusFromRune('x'))
}
