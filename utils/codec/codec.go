package codec

import (
	"encoding/json"
	"errors"

	"github.com/abhissng/chargehub/utils/types"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnsupportedCodec is returned for codecs other than JSON and MessagePack.
var ErrUnsupportedCodec = errors.New("unsupported encoding format")

// Encode serializes data based on the codec type.
func Encode[T any](data T, codecType types.CodecType) ([]byte, error) {
	switch codecType {
	case JSON:
		return json.Marshal(data)
	case MessagePack:
		return msgpack.Marshal(data)
	default:
		return nil, ErrUnsupportedCodec
	}
}

// Decode deserializes data based on the codec type.
func Decode[T any](data []byte, codecType types.CodecType) (T, error) {
	var result T
	var err error

	switch codecType {
	case JSON:
		err = json.Unmarshal(data, &result)
	case MessagePack:
		err = msgpack.Unmarshal(data, &result)
	default:
		err = ErrUnsupportedCodec
	}

	return result, err
}
