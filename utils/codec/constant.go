package codec

import "github.com/abhissng/chargehub/utils/types"

// Supported codecs.
const (
	JSON        types.CodecType = "json"
	MessagePack types.CodecType = "msgpack"
)

// ParseCodec maps a configured encoding name to a codec; empty means JSON.
func ParseCodec(name string) (types.CodecType, bool) {
	switch types.CodecType(name) {
	case "", JSON:
		return JSON, true
	case MessagePack:
		return MessagePack, true
	}
	return "", false
}

// ContentType returns the MIME type carried in message headers.
func ContentType(codecType types.CodecType) string {
	if codecType == MessagePack {
		return "application/msgpack"
	}
	return "application/json"
}
