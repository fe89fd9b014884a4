package repo

import (
	"github.com/ugorji/go/codec"

	"github.com/mzki/erasave/save"
)

var jsonHandle = newJSONHandle()

func newJSONHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	// payload may contain markup. keep it as is.
	h.HTMLCharsAsIs = true
	h.MapKeyAsString = true
	return h
}

func encodeJSON(v interface{}) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, jsonHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

func decodeJSON(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, jsonHandle)
	return dec.Decode(v)
}

// decodeMetadata decodes content of info.json.
// Metadata without engine version is invalid.
func decodeMetadata(data []byte) (*save.Metadata, error) {
	md := &save.Metadata{}
	if err := decodeJSON(data, md); err != nil {
		return nil, err
	}
	if md.EngineVersion == "" {
		return nil, errMissingVersion
	}
	return md, nil
}
