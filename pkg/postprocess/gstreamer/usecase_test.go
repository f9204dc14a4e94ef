package gstreamer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	threadCounts map[string]int
	commHasMulti bool
}

func (f fakeCounter) ThreadCommContains(pid uint32, sub string) int {
	return f.threadCounts[sub]
}

func (f fakeCounter) CommContains(pid uint32, target string) bool {
	return f.commHasMulti
}

func TestS1EncodeSingleStream(t *testing.T) {
	buf := "gst-launch-1.0 v4l2src ! v4l2h264enc name=enc0 ! filesink"
	counter := fakeCounter{threadCounts: map[string]int{"enc0": 1}}

	res := FetchUsecaseDetails(1, buf, counter)
	assert.Equal(t, CameraEncode, res.SignalID)
}

func TestS2EncodeMultiStream(t *testing.T) {
	buf := "gst-launch-1.0 v4l2src ! v4l2h264enc name=enc0 ! filesink"
	counter := fakeCounter{threadCounts: map[string]int{"enc0": 4}}

	res := FetchUsecaseDetails(1, buf, counter)
	assert.Equal(t, CameraEncodeMultiStreams, res.SignalID)
	assert.Equal(t, 4, res.Subtype)
}

func TestS3Decode(t *testing.T) {
	buf := "gst-launch-1.0 filesrc ! v4l2h264dec ! videosink"
	counter := fakeCounter{threadCounts: map[string]int{decodeMarker: 3}}

	res := FetchUsecaseDetails(1, buf, counter)
	assert.Equal(t, VideoDecode, res.SignalID)
	assert.Equal(t, 3, res.Subtype)
}

func TestS4Preview(t *testing.T) {
	buf := "gst-launch-1.0 qtiqmmfsrc ! videosink"
	counter := fakeCounter{}

	res := FetchUsecaseDetails(1, buf, counter)
	assert.Equal(t, CameraPreview, res.SignalID)
}

func TestS5EncodeDecodeOverridesMultiStream(t *testing.T) {
	buf := "gst-launch-1.0 v4l2h264enc name=enc0 ! v4l2h264dec"
	counter := fakeCounter{threadCounts: map[string]int{"enc0": 4, decodeMarker: 2}}

	res := FetchUsecaseDetails(1, buf, counter)
	assert.Equal(t, EncodeDecode, res.SignalID)
}

func TestElementNameDefaultsToCamsrc(t *testing.T) {
	assert.Equal(t, "camsrc", elementName("v4l2h264enc ! filesink"))
	assert.Equal(t, "enc0", elementName("v4l2h264enc name=enc0 ! filesink"))
}

func TestElementNameBindsToNamePrecedingEncoderMarker(t *testing.T) {
	// An unrelated element's name= appears before v4l2h264enc with no
	// name= following it; the scan must still find it because it starts
	// from the beginning of the whole buffer, not from the encoder match.
	assert.Equal(t, "src0", elementName("v4l2src name=src0 ! v4l2h264enc ! filesink"))
}

func TestFetchUsecaseDetailsBindsToNamePrecedingEncoderMarker(t *testing.T) {
	buf := "gst-launch-1.0 v4l2src name=src0 ! v4l2h264enc ! filesink"
	counter := fakeCounter{threadCounts: map[string]int{"src0": 1}}

	res := FetchUsecaseDetails(1, buf, counter)
	assert.Equal(t, CameraEncode, res.SignalID)
	assert.Equal(t, 1, res.Subtype)
}

func TestEncodePacksCategoryAndSignalID(t *testing.T) {
	assert.Equal(t, uint32(1)<<16|uint32(CameraEncode), Encode(Multimedia, CameraEncode))
}
