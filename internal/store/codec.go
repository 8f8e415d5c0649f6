package store

import (
	"encoding/base64"
	"encoding/json"
)

// The persisted blobs are obfuscated with a reversible transform: JSON, XOR
// with a fixed repeating key, base64. This keeps casual eyes off the payload;
// it is not encryption and makes no security commitment.
var xorKey = []byte("shiftdesk-local-records")

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(xorBytes(data)), nil
}

func decode(payload string, out any) error {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(xorBytes(data), out)
}

func xorBytes(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ xorKey[i%len(xorKey)]
	}
	return out
}
